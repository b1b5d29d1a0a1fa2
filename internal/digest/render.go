// Package digest renders a domain.Digest for delivery channels.
package digest

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
	"time"

	"EnergyDigest/internal/domain"
)

const (
	// DefaultIcon marks topics without a configured icon.
	DefaultIcon = "📰"
	dateLayout  = "Monday, January 2, 2006"
	footer      = "Energy Security Aggregator · Automated weekly digest"
	ruleWidth   = 60
)

// FormatDate renders the digest date the way it appears in subjects and headers.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

// Subject builds the mail subject, e.g. "Energy Security Weekly - Monday, October 19, 2026".
func Subject(prefix string, date time.Time) string {
	prefix = strings.TrimSpace(prefix)
	if prefix == "" {
		return FormatDate(date)
	}
	return prefix + " - " + FormatDate(date)
}

// Icon returns the section icon or the default one.
func Icon(section domain.Section) string {
	if section.Icon != "" {
		return section.Icon
	}
	return DefaultIcon
}

type htmlView struct {
	Date     string
	Total    int
	Sections []htmlSection
	Footer   string
}

type htmlSection struct {
	Icon     string
	Topic    string
	Articles []domain.Article
}

var htmlTemplate = template.Must(template.New("digest").Parse(`<!DOCTYPE html>
<html>
<head><meta charset="UTF-8"><meta name="viewport" content="width=device-width, initial-scale=1.0"></head>
<body style="margin: 0; padding: 0; background: #f5f5f5; font-family: Georgia, serif;">
  <table width="100%" cellpadding="0" cellspacing="0" border="0" style="background: #f5f5f5;">
    <tr><td align="center" style="padding: 24px 16px;">
      <table width="620" cellpadding="0" cellspacing="0" border="0" style="background: #ffffff; border-radius: 4px;">
        <tr>
          <td class="header" style="background: #1a1a2e; padding: 28px 36px;">
            <p style="margin: 0; color: #e63946; font-size: 11px; font-weight: 700; text-transform: uppercase; letter-spacing: 2px;">Weekly Digest</p>
            <h1 style="margin: 6px 0 0 0; color: #ffffff; font-size: 22px; font-weight: 400;">Energy Security Briefing</h1>
            <p class="meta" style="margin: 8px 0 0 0; color: #aaaacc; font-size: 13px;">{{.Date}} &nbsp;·&nbsp; {{.Total}} articles</p>
          </td>
        </tr>
        <tr>
          <td style="padding: 8px 36px 28px 36px;">
            <table width="100%" cellpadding="0" cellspacing="0" border="0">
{{- range .Sections}}
              <tr>
                <td class="section" style="padding: 20px 0 4px 0;">
                  <p class="topic" style="margin: 0; font-size: 13px; font-weight: 700; text-transform: uppercase; letter-spacing: 1px; color: #555; border-bottom: 2px solid #e63946; padding-bottom: 6px;">{{.Icon}} {{.Topic}}</p>
                  <table width="100%" cellpadding="0" cellspacing="0" border="0">
{{- range .Articles}}
                    <tr>
                      <td style="padding: 8px 0; border-bottom: 1px solid #f0f0f0;">
                        <a class="headline" href="{{.URL}}" style="color: #1a1a2e; text-decoration: none; font-size: 14px; line-height: 1.5;">{{.Title}}</a>
                        <span class="source" style="color: #888; font-size: 12px; margin-left: 8px;">{{.Source}}</span>
                      </td>
                    </tr>
{{- end}}
                  </table>
                </td>
              </tr>
{{- end}}
            </table>
          </td>
        </tr>
        <tr>
          <td style="background: #f9f9f9; padding: 16px 36px; border-top: 1px solid #eee;">
            <p class="footer" style="margin: 0; color: #aaa; font-size: 11px; text-align: center;">{{.Footer}}</p>
          </td>
        </tr>
      </table>
    </td></tr>
  </table>
</body>
</html>
`))

// RenderHTML renders the mail body. Titles, sources and URLs are escaped by
// html/template; unsafe URL schemes are neutralized.
func RenderHTML(d domain.Digest) (string, error) {
	view := htmlView{
		Date:   FormatDate(d.Date),
		Total:  d.Total(),
		Footer: footer,
	}
	for _, s := range d.Sections {
		view.Sections = append(view.Sections, htmlSection{Icon: Icon(s), Topic: s.Topic, Articles: s.Articles})
	}

	var buf bytes.Buffer
	if err := htmlTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("render html digest: %w", err)
	}
	return buf.String(), nil
}

// RenderText renders the plain-text alternative.
func RenderText(d domain.Digest) string {
	var b strings.Builder
	rule := strings.Repeat("=", ruleWidth)

	b.WriteString("ENERGY SECURITY WEEKLY\n")
	b.WriteString(FormatDate(d.Date) + "\n")
	fmt.Fprintf(&b, "%d articles\n\n%s\n\n", d.Total(), rule)

	for _, s := range d.Sections {
		fmt.Fprintf(&b, "%s %s  (%d articles)\n", Icon(s), strings.ToUpper(s.Topic), len(s.Articles))
		b.WriteString(strings.Repeat("-", ruleWidth) + "\n\n")
		for i, a := range s.Articles {
			fmt.Fprintf(&b, "%d. %s\n", i+1, a.Title)
			fmt.Fprintf(&b, "   %s\n", a.Source)
			fmt.Fprintf(&b, "   %s\n\n", a.URL)
		}
		b.WriteString("\n")
	}

	b.WriteString(rule + "\n")
	b.WriteString(footer)
	return b.String()
}
