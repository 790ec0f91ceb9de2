package email

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/beevik/etree"
)

// Fixed copy of the password reset email
const (
	Brand                  = "PriceTracker"
	ResetSubject           = "PriceTracker - Password Reset"
	ResetPreview           = "PriceTracker - Password Reset"
	ResetHeading           = "Reset Your Password"
	ResetButtonLabel       = "Reset Password"
	resetIntro             = "We received a request to reset your password. Click the button below to set a new password."
	resetIntroText         = "We received a request to reset your password. Open the link below to set a new password."
	resetFooter            = "If you didn't request this, please ignore this email."
	defaultGreetingName    = "there"
	namePlaceholder        = "{{ name }}"
	resetLinkPlaceholder   = "{{ resetLink }}"
	passwordResetRoutePath = "/password-reset/"
)

// ErrMissingResetLink is returned when a reset email has nowhere to point.
var ErrMissingResetLink = errors.New("email: reset link is required")

// ResetPasswordData fills the two slots of the reset email
type ResetPasswordData struct {
	Name      string
	ResetLink string
}

// PlaceholderData keeps the slots as literal template tokens so the
// rendered document can be handed to an external template engine.
func PlaceholderData() ResetPasswordData {
	return ResetPasswordData{Name: namePlaceholder, ResetLink: resetLinkPlaceholder}
}

// ResetLink builds the reset page URL the email points to.
func ResetLink(appHost, token string) string {
	return strings.TrimRight(appHost, "/") + passwordResetRoutePath + url.PathEscape(token)
}

// ResetPasswordDocument builds the reset email as an element tree. Values
// are stored as text and attributes, so they are escaped on output.
func ResetPasswordDocument(data ResetPasswordData) *etree.Document {
	doc := etree.NewDocument()
	doc.WriteSettings = etree.WriteSettings{
		CanonicalEndTags: true,
		CanonicalText:    true,
		CanonicalAttrVal: true,
	}
	doc.CreateDirective("DOCTYPE html")

	html := doc.CreateElement("html")
	html.CreateAttr("lang", "en")
	head := html.CreateElement("head")
	head.CreateElement("title").SetText(ResetSubject)

	body := html.CreateElement("body")
	body.CreateAttr("style", "background-color:#d1d5db;margin:0;padding:24px 0;font-family:Helvetica,Arial,sans-serif;")

	preview := body.CreateElement("div")
	preview.CreateAttr("style", "display:none;overflow:hidden;line-height:1px;opacity:0;max-height:0;max-width:0;")
	preview.SetText(ResetPreview)

	header := container(body, "margin:0 auto;text-align:center;")
	brand := header.CreateElement("p")
	brand.CreateAttr("style", "font-size:24px;line-height:32px;color:#f97316;font-weight:600;")
	brand.SetText(Brand)

	card := container(body, "margin:0 auto;max-width:448px;padding:24px;background-color:#ffffff;border-radius:16px;")

	heading := card.CreateElement("h1")
	heading.CreateAttr("style", "font-size:24px;font-weight:700;margin:0 0 16px;")
	heading.SetText(ResetHeading)

	paragraph(card, "font-size:14px;line-height:24px;", greeting(data.Name))
	paragraph(card, "font-size:14px;line-height:24px;margin-bottom:16px;", resetIntro)

	action := container(card, "width:100%;text-align:center;")
	button := action.CreateElement("a")
	button.CreateAttr("href", data.ResetLink)
	button.CreateAttr("target", "_blank")
	button.CreateAttr("style", "display:inline-block;background-color:#3b82f6;color:#ffffff;padding:8px 16px;border-radius:4px;text-decoration:none;width:384px;text-align:center;")
	button.SetText(ResetButtonLabel)

	paragraph(card, "font-size:14px;line-height:24px;margin-top:12px;color:#4b5563;", resetFooter)

	doc.Indent(2)
	return doc
}

// RenderResetPassword renders the HTML and plain text bodies of the reset
// email.
func RenderResetPassword(data ResetPasswordData) (string, string, error) {
	if strings.TrimSpace(data.ResetLink) == "" {
		return "", "", ErrMissingResetLink
	}

	html, err := ResetPasswordDocument(data).WriteToString()
	if err != nil {
		return "", "", fmt.Errorf("failed to render reset email: %w", err)
	}

	var text strings.Builder
	fmt.Fprintf(&text, "%s\n\n", greeting(data.Name))
	fmt.Fprintf(&text, "%s\n\n", resetIntroText)
	fmt.Fprintf(&text, "%s\n\n", data.ResetLink)
	fmt.Fprintf(&text, "%s\n\n", resetFooter)
	text.WriteString(Brand + "\n")

	return html, text.String(), nil
}

func greeting(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		name = defaultGreetingName
	}
	return "Hi " + name + ","
}

// container mimics an email-safe centered block
func container(parent *etree.Element, style string) *etree.Element {
	table := parent.CreateElement("table")
	table.CreateAttr("role", "presentation")
	table.CreateAttr("align", "center")
	table.CreateAttr("width", "100%")
	table.CreateAttr("style", style)
	return table.CreateElement("tbody").CreateElement("tr").CreateElement("td")
}

func paragraph(parent *etree.Element, style, text string) {
	p := parent.CreateElement("p")
	p.CreateAttr("style", style)
	p.SetText(text)
}
