package notify

// Block is a Slack layout block
type Block struct {
	Type     string        `json:"type"`
	Text     *TextObject   `json:"text,omitempty"`
	Elements []*TextObject `json:"elements,omitempty"`
}

// TextObject is the text of a block
type TextObject struct {
	Type  string `json:"type"`
	Text  string `json:"text"`
	Emoji bool   `json:"emoji,omitempty"`
}

// HeaderBlock creates a plain-text header
func HeaderBlock(text string) *Block {
	return &Block{Type: "header", Text: &TextObject{Type: "plain_text", Text: text, Emoji: true}}
}

// SectionBlock creates a markdown section
func SectionBlock(text string) *Block {
	return &Block{Type: "section", Text: &TextObject{Type: "mrkdwn", Text: text}}
}

// DividerBlock creates a divider
func DividerBlock() *Block {
	return &Block{Type: "divider"}
}

// ContextBlock creates a context line from markdown elements
func ContextBlock(elements ...string) *Block {
	b := &Block{Type: "context", Elements: make([]*TextObject, 0, len(elements))}
	for _, e := range elements {
		b.Elements = append(b.Elements, &TextObject{Type: "mrkdwn", Text: e})
	}
	return b
}
