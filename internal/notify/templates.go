package notify

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"bookdesk/internal/models"
)

var clientTemplate = template.Must(template.New("client").Parse(`<html>
<body>
  <h2>Your appointment is confirmed</h2>
  <p>Hi {{.Name}},</p>
  <p>Your appointment is scheduled for <b>{{.Date}}</b> at <b>{{.Time}}</b>.</p>
  {{if .MeetingLink}}<p>Join the meeting: <a href="{{.MeetingLink}}">{{.MeetingLink}}</a></p>
  {{else}}<p>The meeting link will be shared with you shortly.</p>{{end}}
  <p>See you then!</p>
</body>
</html>`))

var adminTemplate = template.Must(template.New("admin").Parse(`<html>
<body>
  <h2>New appointment booked</h2>
  <p><b>{{.Name}}</b> ({{.Email}}) booked an appointment.</p>
  <p>When: <b>{{.Date}}</b> at <b>{{.Time}}</b></p>
  {{if .MeetingLink}}<p>Meeting link: <a href="{{.MeetingLink}}">{{.MeetingLink}}</a></p>{{end}}
</body>
</html>`))

type templateData struct {
	Name        string
	Email       string
	Date        string
	Time        string
	MeetingLink string
}

func buildTemplateData(booking models.BookingRequest, event models.Event, loc *time.Location) templateData {
	local := event.Start.In(loc)
	return templateData{
		Name:        booking.Name,
		Email:       booking.Email,
		Date:        local.Format("Monday, 2 January 2006"),
		Time:        local.Format("3:04 PM"),
		MeetingLink: event.MeetingLink,
	}
}

func renderTemplate(t *template.Template, data templateData) (string, error) {
	var b strings.Builder
	if err := t.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render %s template: %w", t.Name(), err)
	}
	return b.String(), nil
}
