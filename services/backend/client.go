package backend

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/MarcGrol/shopperbot/lib/myerrors"
)

const AdminHeader = "x-admin-username"

//go:generate mockgen -source=client.go -package backend -destination client_mock.go API
type API interface {
	CheckUser(c context.Context, userID int64) (UserStatus, error)
	Register(c context.Context, registration Registration) (RegistrationResult, error)
	Login(c context.Context, userID int64, code string) (LoginResult, error)
	Logout(c context.Context, userID int64) error

	GetProduct(c context.Context, barcode string) (Product, error)
	ListProducts(c context.Context) ([]Product, error)

	GetCart(c context.Context, userID int64) ([]CartItem, error)
	AddToCart(c context.Context, userID int64, barcode string, quantity int) error
	ClearCart(c context.Context, userID int64) error

	CreateOrder(c context.Context, order OrderRequest) (OrderResponse, error)
	ListUserOrders(c context.Context, userID int64) ([]Order, error)

	ListStaff(c context.Context, asUsername string) ([]StaffMember, error)
	GetAnalytics(c context.Context, asUsername string) (Analytics, error)
	ListOrders(c context.Context, asUsername string) ([]Order, error)
	BulkUpsertProducts(c context.Context, asUsername string, products []Product) (BulkResult, error)
}

type Caller interface {
	Call(c context.Context, method string, path string, body []byte, headers map[string]string) (Response, error)
}

type Client struct {
	caller Caller
}

func NewClient(caller Caller) *Client {
	return &Client{
		caller: caller,
	}
}

func (cl *Client) CheckUser(c context.Context, userID int64) (UserStatus, error) {
	status := UserStatus{}
	err := cl.do(c, http.MethodGet, "/api/users/check/"+id(userID), "", nil, &status)
	if err != nil {
		return UserStatus{}, err
	}
	return status, nil
}

func (cl *Client) Register(c context.Context, registration Registration) (RegistrationResult, error) {
	result := RegistrationResult{}
	err := cl.do(c, http.MethodPost, "/api/users/register", "", registration, &result)
	if err != nil {
		return RegistrationResult{}, err
	}
	return result, nil
}

func (cl *Client) Login(c context.Context, userID int64, code string) (LoginResult, error) {
	result := LoginResult{}
	err := cl.do(c, http.MethodPost, "/api/users/login", "", loginRequest{UserID: userID, Code: code}, &result)
	if err != nil {
		return LoginResult{}, err
	}
	return result, nil
}

func (cl *Client) Logout(c context.Context, userID int64) error {
	return cl.do(c, http.MethodPost, "/api/users/logout", "", userRequest{UserID: userID}, nil)
}

func (cl *Client) GetProduct(c context.Context, barcode string) (Product, error) {
	product := Product{}
	err := cl.do(c, http.MethodGet, "/api/products/"+url.PathEscape(strings.TrimSpace(barcode)), "", nil, &product)
	if err != nil {
		return Product{}, err
	}
	return product, nil
}

func (cl *Client) ListProducts(c context.Context) ([]Product, error) {
	products := []Product{}
	err := cl.do(c, http.MethodGet, "/api/products/all", "", nil, &products)
	if err != nil {
		return nil, err
	}
	return products, nil
}

func (cl *Client) GetCart(c context.Context, userID int64) ([]CartItem, error) {
	items := []CartItem{}
	err := cl.do(c, http.MethodGet, "/api/cart/"+id(userID), "", nil, &items)
	if err != nil {
		return nil, err
	}
	return items, nil
}

func (cl *Client) AddToCart(c context.Context, userID int64, barcode string, quantity int) error {
	return cl.do(c, http.MethodPost, "/api/cart/add", "", addToCartRequest{UserID: userID, Barcode: barcode, Quantity: quantity}, nil)
}

func (cl *Client) ClearCart(c context.Context, userID int64) error {
	return cl.do(c, http.MethodPost, "/api/cart/clear", "", userRequest{UserID: userID}, nil)
}

func (cl *Client) CreateOrder(c context.Context, order OrderRequest) (OrderResponse, error) {
	resp := OrderResponse{}
	err := cl.do(c, http.MethodPost, "/api/checkout", "", order, &resp)
	if err != nil {
		return OrderResponse{}, err
	}
	return resp, nil
}

func (cl *Client) ListUserOrders(c context.Context, userID int64) ([]Order, error) {
	orders := []Order{}
	err := cl.do(c, http.MethodGet, "/api/orders/user/"+id(userID), "", nil, &orders)
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (cl *Client) ListStaff(c context.Context, asUsername string) ([]StaffMember, error) {
	staff := []StaffMember{}
	err := cl.do(c, http.MethodGet, "/api/admin/staff", asUsername, nil, &staff)
	if err != nil {
		return nil, err
	}
	return staff, nil
}

func (cl *Client) GetAnalytics(c context.Context, asUsername string) (Analytics, error) {
	analytics := Analytics{}
	err := cl.do(c, http.MethodGet, "/api/admin/analytics", asUsername, nil, &analytics)
	if err != nil {
		return Analytics{}, err
	}
	return analytics, nil
}

// ListOrders returns all orders, newest first.
func (cl *Client) ListOrders(c context.Context, asUsername string) ([]Order, error) {
	orders := []Order{}
	err := cl.do(c, http.MethodGet, "/api/admin/orders", asUsername, nil, &orders)
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (cl *Client) BulkUpsertProducts(c context.Context, asUsername string, products []Product) (BulkResult, error) {
	result := BulkResult{}
	err := cl.do(c, http.MethodPost, "/api/admin/products/bulk", asUsername, products, &result)
	if err != nil {
		return BulkResult{}, err
	}
	return result, nil
}

func (cl *Client) do(c context.Context, method string, path string, asUsername string, req interface{}, resp interface{}) error {
	var body []byte
	if req != nil {
		var err error
		body, err = json.Marshal(req)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error marshalling request for %s %s: %w", method, path, err))
		}
	}

	var headers map[string]string
	if asUsername != "" {
		headers = map[string]string{AdminHeader: asUsername}
	}

	response, err := cl.caller.Call(c, method, path, body, headers)
	if err != nil {
		var netErr *NetworkError
		if errors.As(err, &netErr) {
			return myerrors.NewUnavailableError(err)
		}
		return myerrors.NewInternalError(err)
	}

	if response.Status < 200 || response.Status >= 300 {
		return myerrors.FromHTTPStatus(response.Status, &StatusError{Method: method, Path: path, Message: errorMessage(response.Body)})
	}

	if resp != nil && len(response.Body) > 0 {
		err = json.Unmarshal(response.Body, resp)
		if err != nil {
			return myerrors.NewInternalError(fmt.Errorf("error parsing response of %s %s: %w", method, path, err))
		}
	}

	return nil
}

// StatusError is a request the backend answered with a non-2xx status.
type StatusError struct {
	Method  string
	Path    string
	Message string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.Message)
}

// Message returns what the backend said about a failed request, or the error text for any
// other failure.
func Message(err error) string {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.Message
	}
	return err.Error()
}

func errorMessage(body []byte) string {
	errResp := struct {
		Error string `json:"error"`
	}{}
	if json.Unmarshal(body, &errResp) == nil && errResp.Error != "" {
		return errResp.Error
	}
	return strings.TrimSpace(string(body))
}

func id(userID int64) string {
	return strconv.FormatInt(userID, 10)
}
