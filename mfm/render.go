package mfm

import (
	"fmt"
	"html"
	"strings"

	"notefeed/models"
)

// Renderer turns parsed markup into HTML for a specific instance. Url and
// Host scope local mention and hashtag links.
type Renderer struct {
	Url  string
	Host string
}

// ToHtml renders nodes to an HTML fragment. The mention table resolves
// remote mentions that cannot be linked from the handle alone; local
// mentions link to the instance profile page.
func (r *Renderer) ToHtml(nodes []Node, mentions []models.MentionedUser) string {
	var out strings.Builder

	for _, node := range nodes {
		switch node.Type {
		case NodeText:
			out.WriteString(escapeText(node.Text))
		case NodeBold:
			out.WriteString("<b>" + html.EscapeString(node.Text) + "</b>")
		case NodeCode:
			out.WriteString("<code>" + html.EscapeString(node.Text) + "</code>")
		case NodeMention:
			out.WriteString(r.renderMention(node, mentions))
		case NodeHashtag:
			out.WriteString(fmt.Sprintf(`<a href="%s/tags/%s">#%s</a>`,
				r.Url, node.Text, html.EscapeString(node.Text)))
		case NodeUrl:
			escaped := html.EscapeString(node.Text)
			out.WriteString(fmt.Sprintf(`<a href="%s">%s</a>`, escaped, escaped))
		}
	}

	return out.String()
}

// ToPlainText flattens nodes to text with no markup syntax, for titles
// and summaries.
func ToPlainText(nodes []Node) string {
	var out strings.Builder

	for _, node := range nodes {
		switch node.Type {
		case NodeMention:
			out.WriteString("@" + node.Username)
			if node.Host != "" {
				out.WriteString("@" + node.Host)
			}
		case NodeHashtag:
			out.WriteString("#" + node.Text)
		default:
			out.WriteString(node.Text)
		}
	}

	return out.String()
}

func (r *Renderer) renderMention(node Node, mentions []models.MentionedUser) string {
	acct := "@" + node.Username
	href := ""

	if node.Host == "" || node.Host == r.Host {
		href = r.Url + "/@" + node.Username
	} else {
		acct += "@" + node.Host
		for _, mention := range mentions {
			if mention.Username == node.Username && mention.Host == node.Host {
				href = mention.URL
				if href == "" {
					href = mention.URI
				}
				break
			}
		}
		if href == "" {
			href = fmt.Sprintf("https://%s/@%s", node.Host, node.Username)
		}
	}

	return fmt.Sprintf(`<a href="%s" class="u-url mention">%s</a>`,
		html.EscapeString(href), html.EscapeString(acct))
}

// escapeText escapes HTML metacharacters and turns newlines into line
// breaks so multi-line notes keep their shape in feed readers.
func escapeText(text string) string {
	escaped := html.EscapeString(text)
	return strings.ReplaceAll(escaped, "\n", "<br>")
}
