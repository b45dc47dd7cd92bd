package chat

import (
	"fmt"

	formcodec "github.com/go-playground/form/v4"
)

const (
	AdminTabInventory = "inventory"
	AdminTabStaff     = "staff"
)

type scannerQuery struct {
	UserID int64 `form:"userId"`
}

type adminQuery struct {
	Tab string `form:"tab,omitempty"`
}

type historyQuery struct {
	OrderID string `form:"orderId,omitempty"`
}

// WebLinks builds the URLs of the companion web app.
type WebLinks struct {
	baseURL string
	encoder *formcodec.Encoder
}

func NewWebLinks(baseURL string) *WebLinks {
	return &WebLinks{
		baseURL: baseURL,
		encoder: formcodec.NewEncoder(),
	}
}

func (l *WebLinks) Scanner(userID int64) string {
	return l.build("/scanner.html", scannerQuery{UserID: userID})
}

func (l *WebLinks) Admin(tab string) string {
	return l.build("/admin", adminQuery{Tab: tab})
}

func (l *WebLinks) Staff() string {
	return l.build("/staff", nil)
}

func (l *WebLinks) Receipt(orderID string) string {
	return l.build("/history", historyQuery{OrderID: orderID})
}

func (l *WebLinks) build(path string, query interface{}) string {
	link := l.baseURL + path
	if query == nil {
		return link
	}

	values, err := l.encoder.Encode(query)
	if err != nil {
		// only plain structs are passed in
		panic(fmt.Sprintf("error encoding query for %s: %s", path, err))
	}
	if len(values) == 0 {
		return link
	}
	return link + "?" + values.Encode()
}
