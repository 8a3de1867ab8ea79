// Package apperr はusecaseからhandlerへ返すエラーの型。
// Codeはクライアントが分岐に使う安定した識別子。
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

type Code string

const (
	CodeEmptyCart          Code = "EMPTY_CART"
	CodeProductUnavailable Code = "PRODUCT_UNAVAILABLE"
	CodeCrossShopOrder     Code = "CROSS_SHOP_ORDER"
	CodeShopUnavailable    Code = "SHOP_UNAVAILABLE"
	CodeInvalidTransition  Code = "INVALID_TRANSITION"
	CodeForbidden          Code = "FORBIDDEN"
	CodeUnauthorized       Code = "UNAUTHORIZED"
	CodeNotFound           Code = "NOT_FOUND"
	CodeValidation         Code = "VALIDATION"
	CodeConflict           Code = "CONFLICT"
	CodeInternal           Code = "INTERNAL"
)

type HTTPError struct {
	Status  int
	Code    Code
	Message string
}

func (e *HTTPError) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Code, e.Message)
}

// errors.Is(err, apperr.ErrForbidden) のようにCodeで比較できる
func (e *HTTPError) Is(target error) bool {
	t, ok := target.(*HTTPError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

func New(status int, code Code, message string) error {
	return &HTTPError{Status: status, Code: code, Message: message}
}

func As(err error) (*HTTPError, bool) {
	var he *HTTPError
	ok := errors.As(err, &he)
	return he, ok
}

// 比較用（メッセージはデフォルト）
var (
	ErrEmptyCart          = New(http.StatusBadRequest, CodeEmptyCart, "no cart lines to check out")
	ErrProductUnavailable = New(http.StatusBadRequest, CodeProductUnavailable, "product is not available")
	ErrCrossShopOrder     = New(http.StatusBadRequest, CodeCrossShopOrder, "an order can contain products from only one shop")
	ErrShopUnavailable    = New(http.StatusBadRequest, CodeShopUnavailable, "shop is not approved")
	ErrInvalidTransition  = New(http.StatusConflict, CodeInvalidTransition, "order status does not allow this operation")
	ErrForbidden          = New(http.StatusForbidden, CodeForbidden, "forbidden")
	ErrUnauthorized       = New(http.StatusUnauthorized, CodeUnauthorized, "unauthorized")
	ErrNotFound           = New(http.StatusNotFound, CodeNotFound, "not found")
	ErrConflict           = New(http.StatusConflict, CodeConflict, "conflict")
	ErrInternal           = New(http.StatusInternalServerError, CodeInternal, "internal server error")
)

// 各種コンストラクタ（メッセージだけ差し替える）
func EmptyCart(msg string) error          { return New(http.StatusBadRequest, CodeEmptyCart, msg) }
func ProductUnavailable(msg string) error { return New(http.StatusBadRequest, CodeProductUnavailable, msg) }
func CrossShopOrder(msg string) error     { return New(http.StatusBadRequest, CodeCrossShopOrder, msg) }
func ShopUnavailable(msg string) error    { return New(http.StatusBadRequest, CodeShopUnavailable, msg) }
func InvalidTransition(msg string) error  { return New(http.StatusConflict, CodeInvalidTransition, msg) }
func Forbidden(msg string) error          { return New(http.StatusForbidden, CodeForbidden, msg) }
func NotFound(msg string) error           { return New(http.StatusNotFound, CodeNotFound, msg) }
func Validation(msg string) error         { return New(http.StatusBadRequest, CodeValidation, msg) }
func Conflict(msg string) error           { return New(http.StatusConflict, CodeConflict, msg) }
