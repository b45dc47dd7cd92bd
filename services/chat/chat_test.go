package chat

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/MarcGrol/shopperbot/lib/myerrors"
)

func TestNaira(t *testing.T) {
	assert.Equal(t, "₦0", Naira(0))
	assert.Equal(t, "₦500", Naira(500))
	assert.Equal(t, "₦2,500", Naira(2500))
	assert.Equal(t, "₦1,234,567", Naira(1234567))
	assert.Equal(t, "-₦1,000", Naira(-1000))
}

func TestEscape(t *testing.T) {
	assert.Equal(t, "Ada\\_Lovelace \\*VIP\\*", Escape("Ada_Lovelace *VIP*"))
}

func TestReply(t *testing.T) {
	r := Markdown("Added *%s*", "Milo").AsEdit().WithInline(Row(CallbackButton("🛒 VIEW CART", "view_cart")))
	assert.Equal(t, Reply{
		Text:     "Added *Milo*",
		Markdown: true,
		Edit:     true,
		Inline:   [][]Button{{{Label: "🛒 VIEW CART", Data: "view_cart"}}},
	}, r)
}

func TestWebLinks(t *testing.T) {
	sut := NewWebLinks("https://shop.example.com")

	assert.Equal(t, "https://shop.example.com/scanner.html?userId=42", sut.Scanner(42))
	assert.Equal(t, "https://shop.example.com/admin", sut.Admin(""))
	assert.Equal(t, "https://shop.example.com/admin?tab=inventory", sut.Admin(AdminTabInventory))
	assert.Equal(t, "https://shop.example.com/staff", sut.Staff())
	assert.Equal(t, "https://shop.example.com/history?orderId=ORD-1-42", sut.Receipt("ORD-1-42"))
}

func TestErrorReply(t *testing.T) {
	cause := fmt.Errorf("boom")

	assert.Equal(t, UnavailableText, ErrorReply(myerrors.NewUnavailableError(cause), "fetching cart").Text)
	assert.Equal(t, LoginFirstText, ErrorReply(myerrors.NewAuthRequiredError(cause), "fetching cart").Text)
	assert.True(t, ErrorReply(myerrors.NewForbiddenError(cause), "fetching cart").Markdown)
	assert.Equal(t, "⚠️ Error fetching cart. Please try again.", ErrorReply(cause, "fetching cart").Text)
}
