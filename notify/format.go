// Package notify delivers new-user registrations to log channels.
package notify

import (
	"fmt"
	"html"
	"strconv"
	"strings"

	"github.com/CreativeUnicorns/usersettings"
)

// TimeLayout formats the registration time in log messages.
const TimeLayout = "02 Jan 2006 15:04:05"

// FormatNewUser renders the log line posted to Telegram. Names are HTML escaped and the
// user is mentioned through a tg:// link.
func FormatNewUser(reg usersettings.Registration) string {
	u := reg.User
	name := u.DisplayName()
	if name == "" {
		name = strconv.FormatInt(u.ID, 10)
	}

	var b strings.Builder
	b.WriteString("<b>#NewUser</b>\n\n")
	fmt.Fprintf(&b, "Name: %s\n", html.EscapeString(name))
	fmt.Fprintf(&b, "Mention: <a href=\"tg://user?id=%d\">%s</a>\n", u.ID, html.EscapeString(name))
	if u.Username != "" {
		fmt.Fprintf(&b, "Username: @%s\n", html.EscapeString(u.Username))
	}
	fmt.Fprintf(&b, "ID: <code>%d</code>\n", u.ID)
	fmt.Fprintf(&b, "Joined: %s", reg.JoinDate)
	if !reg.At.IsZero() {
		fmt.Fprintf(&b, " (%s)", reg.At.Format(TimeLayout))
	}
	return b.String()
}

// FormatNewUserPlain renders the same information without markup.
func FormatNewUserPlain(reg usersettings.Registration) string {
	u := reg.User
	name := u.DisplayName()
	if name == "" {
		name = strconv.FormatInt(u.ID, 10)
	}

	var b strings.Builder
	b.WriteString("#NewUser\n")
	fmt.Fprintf(&b, "Name: %s\n", name)
	if u.Username != "" {
		fmt.Fprintf(&b, "Username: @%s\n", u.Username)
	}
	fmt.Fprintf(&b, "ID: %d\n", u.ID)
	fmt.Fprintf(&b, "Joined: %s", reg.JoinDate)
	return b.String()
}
