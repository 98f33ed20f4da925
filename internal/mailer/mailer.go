package mailer

import (
	"bytes"
	"context"
	"embed"
	"fmt"
	"io/fs"
	"net/http"
	"time"

	"github.com/gofiber/template/html/v2"

	"orgsite-backend/internal/models"
)

//go:embed templates/*.html
var templatesFS embed.FS

const eventDateLayout = "2006/1/2 15:04"

// Transport hands a rendered message to whatever delivers it.
type Transport interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// Dispatcher renders registration confirmations and passes them to a Transport.
type Dispatcher struct {
	engine    *html.Engine
	transport Transport
	orgName   string
	loc       *time.Location
}

func NewDispatcher(transport Transport, orgName string, loc *time.Location) (*Dispatcher, error) {
	sub, err := fs.Sub(templatesFS, "templates")
	if err != nil {
		return nil, err
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	if err := engine.Load(); err != nil {
		return nil, fmt.Errorf("load mail templates: %w", err)
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Dispatcher{engine: engine, transport: transport, orgName: orgName, loc: loc}, nil
}

type registrationMail struct {
	Name            string
	EventTitle      string
	EventDate       string
	EventLocation   string
	RegistrationUID string
	Message         string
	OrgName         string
}

func (d *Dispatcher) Subject(event *models.Event) string {
	return fmt.Sprintf("[%s] %s registration received", d.orgName, event.Title)
}

// NotifyRegistration implements services.Notifier.
func (d *Dispatcher) NotifyRegistration(ctx context.Context, reg *models.Registration, event *models.Event, confirmationMessage string) error {
	var body bytes.Buffer
	err := d.engine.Render(&body, "registration", registrationMail{
		Name:            reg.Name,
		EventTitle:      event.Title,
		EventDate:       event.Date.In(d.loc).Format(eventDateLayout),
		EventLocation:   event.Location,
		RegistrationUID: reg.UID,
		Message:         confirmationMessage,
		OrgName:         d.orgName,
	})
	if err != nil {
		return fmt.Errorf("render registration mail: %w", err)
	}
	return d.transport.Send(ctx, reg.Email, d.Subject(event), body.String())
}
