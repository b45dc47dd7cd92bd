package chat

import "context"

type Kind int

const (
	KindUnknown Kind = iota
	KindCommand
	KindText
	KindCallback
	KindDocument
	KindWebAppData
)

func (k Kind) String() string {
	switch k {
	case KindCommand:
		return "command"
	case KindText:
		return "text"
	case KindCallback:
		return "callback"
	case KindDocument:
		return "document"
	case KindWebAppData:
		return "web-app-data"
	default:
		return "unknown"
	}
}

type User struct {
	ID       int64
	Username string
	FullName string
}

type Document struct {
	FileID   string
	FileName string
	Size     int
}

// Event is a single inbound chat interaction, independent of the transport that delivered it.
type Event struct {
	ID        int
	Kind      Kind
	User      User
	ChatID    int64
	MessageID int

	Command string
	Args    string
	Text    string
	// Data holds the callback payload or the data sent by the web app
	Data     string
	Document *Document
}

type Button struct {
	Label     string
	Data      string
	WebAppURL string
}

// Reply is a single outbound message. With Edit set the message that carried the pressed
// button is replaced instead of a new message being sent.
type Reply struct {
	Text     string
	Markdown bool
	Edit     bool
	Inline   [][]Button
	Menu     [][]Button
	// RemoveMenu hides a previously sent persistent menu
	RemoveMenu bool
}

//go:generate mockgen -source=model.go -package chat -destination model_mock.go FileFetcher
type FileFetcher interface {
	Fetch(c context.Context, fileID string) ([]byte, error)
}

func Text(format string, args ...any) Reply {
	return Reply{Text: sprintf(format, args...)}
}

func Markdown(format string, args ...any) Reply {
	return Reply{Text: sprintf(format, args...), Markdown: true}
}

func (r Reply) AsEdit() Reply {
	r.Edit = true
	return r
}

func (r Reply) WithInline(rows ...[]Button) Reply {
	r.Inline = rows
	return r
}

func (r Reply) WithMenu(rows ...[]Button) Reply {
	r.Menu = rows
	return r
}

func Row(buttons ...Button) []Button {
	return buttons
}

func CallbackButton(label string, data string) Button {
	return Button{Label: label, Data: data}
}

func WebAppButton(label string, url string) Button {
	return Button{Label: label, WebAppURL: url}
}

func TextButton(label string) Button {
	return Button{Label: label}
}
