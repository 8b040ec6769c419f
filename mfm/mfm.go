// Package mfm parses the lightweight markup used in note bodies and
// renders it to HTML or plain text. Only the constructs that matter for
// syndication are supported: bold, inline code, mentions, hashtags and
// bare links. Everything else passes through as escaped text.
package mfm

import (
	"strings"
	"unicode"
)

type NodeType int

const (
	NodeText NodeType = iota
	NodeBold
	NodeCode
	NodeMention
	NodeHashtag
	NodeUrl
)

// Node is one parsed markup token. Mention nodes carry the username and
// optional host split out of the @username@host form.
type Node struct {
	Type     NodeType
	Text     string
	Username string
	Host     string
}

// Parse tokenizes markup source into a flat node sequence. Parsing never
// fails; input that matches no construct is kept as text.
func Parse(text string) []Node {
	var nodes []Node
	var plain strings.Builder

	flush := func() {
		if plain.Len() > 0 {
			nodes = append(nodes, Node{Type: NodeText, Text: plain.String()})
			plain.Reset()
		}
	}

	i := 0
	for i < len(text) {
		switch {
		case strings.HasPrefix(text[i:], "**"):
			if end := strings.Index(text[i+2:], "**"); end >= 0 {
				flush()
				nodes = append(nodes, Node{Type: NodeBold, Text: text[i+2 : i+2+end]})
				i += end + 4
				continue
			}
		case text[i] == '`':
			if end := strings.IndexByte(text[i+1:], '`'); end >= 0 {
				flush()
				nodes = append(nodes, Node{Type: NodeCode, Text: text[i+1 : i+1+end]})
				i += end + 2
				continue
			}
		case text[i] == '@' && boundaryBefore(text, i):
			if username, host, length := scanMention(text[i:]); length > 0 {
				flush()
				nodes = append(nodes, Node{Type: NodeMention, Username: username, Host: host})
				i += length
				continue
			}
		case text[i] == '#' && boundaryBefore(text, i):
			if tag, length := scanHashtag(text[i:]); length > 0 {
				flush()
				nodes = append(nodes, Node{Type: NodeHashtag, Text: tag})
				i += length
				continue
			}
		case strings.HasPrefix(text[i:], "https://") || strings.HasPrefix(text[i:], "http://"):
			if url, length := scanUrl(text[i:]); length > 0 {
				flush()
				nodes = append(nodes, Node{Type: NodeUrl, Text: url})
				i += length
				continue
			}
		}
		plain.WriteByte(text[i])
		i++
	}
	flush()

	return nodes
}

// boundaryBefore reports whether position i starts a new token, i.e. is at
// the beginning of the text or preceded by a non-word character.
func boundaryBefore(text string, i int) bool {
	if i == 0 {
		return true
	}
	prev := rune(text[i-1])
	return !unicode.IsLetter(prev) && !unicode.IsDigit(prev)
}

func isWordByte(b byte) bool {
	return b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' || b >= '0' && b <= '9' || b == '_'
}

func isHostByte(b byte) bool {
	return isWordByte(b) || b == '.' || b == '-'
}

// scanMention matches @username or @username@host at the start of s and
// returns the parts and the matched length, or 0 when there is no match.
func scanMention(s string) (username string, host string, length int) {
	i := 1
	for i < len(s) && (isWordByte(s[i]) || s[i] == '-') {
		i++
	}
	if i == 1 {
		return "", "", 0
	}
	username = s[1:i]
	length = i

	if i < len(s) && s[i] == '@' {
		j := i + 1
		for j < len(s) && isHostByte(s[j]) {
			j++
		}
		if j > i+1 {
			host = s[i+1 : j]
			length = j
		}
	}

	return username, host, length
}

func scanHashtag(s string) (tag string, length int) {
	i := 1
	for i < len(s) && isWordByte(s[i]) {
		i++
	}
	if i == 1 {
		return "", 0
	}
	return s[1:i], i
}

// scanUrl takes everything up to whitespace, trimming trailing punctuation
// that is far more likely to belong to the sentence than the link.
func scanUrl(s string) (url string, length int) {
	i := 0
	for i < len(s) && !unicode.IsSpace(rune(s[i])) {
		i++
	}
	for i > 0 && strings.ContainsRune(".,;:!?)", rune(s[i-1])) {
		i--
	}
	if i == 0 {
		return "", 0
	}
	return s[:i], i
}
