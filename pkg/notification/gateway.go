package notification

import "context"

// Gateway delivers one payload to one device token. Send never returns an
// error; delivery problems are reported through SendResult.
type Gateway interface {
	Enabled() bool
	Send(ctx context.Context, token string, p *Payload) SendResult
}

// SendResult 单次推送结果
type SendResult struct {
	Delivered bool
	Status    int
	Reason    string
	// Fatal marks a token the provider will never accept again.
	Fatal bool
}

// fatalReasons are provider rejections that mean the token should be dropped.
var fatalReasons = map[string]bool{
	"BadDeviceToken": true,
	"Unregistered":   true,
	"ExpiredToken":   true,
}

func IsFatalReason(reason string) bool { return fatalReasons[reason] }

type Alert struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle,omitempty"`
	Body     string `json:"body"`
}

type Aps struct {
	Alert          Alert  `json:"alert"`
	Sound          string `json:"sound,omitempty"`
	Badge          *int   `json:"badge,omitempty"`
	MutableContent int    `json:"mutable-content,omitempty"`
	ThreadID       string `json:"thread-id,omitempty"`
}

// Payload is the APNs request body; Data travels next to aps for the app.
type Payload struct {
	Aps  Aps               `json:"aps"`
	Data map[string]string `json:"data,omitempty"`
}

// Disabled is used when no push credentials are configured.
type Disabled struct{}

func (Disabled) Enabled() bool { return false }

func (Disabled) Send(context.Context, string, *Payload) SendResult {
	return SendResult{Reason: "APNs not configured"}
}
