package runner

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"os"
	"strings"
	"sync"

	"github.com/aretw0/switchboard/pkg/domain"
)

// JSONHandler implements IOHandler over JSON Lines.
//
// Each input line is either a JSON string, an object with a "user_input"
// field, or raw text. Each turn is written as one TurnState object;
// system messages are written as {"system": "..."}.
type JSONHandler struct {
	Reader *bufio.Reader
	Writer io.Writer

	mu      sync.Mutex
	encoder *json.Encoder
}

// NewJSONHandler creates a handler for JSON IO.
func NewJSONHandler(r io.Reader, w io.Writer) *JSONHandler {
	if r == nil {
		r = os.Stdin
	}
	if w == nil {
		w = os.Stdout
	}
	return &JSONHandler{
		Reader:  bufio.NewReader(r),
		Writer:  w,
		encoder: json.NewEncoder(w),
	}
}

type jsonInput struct {
	UserInput string `json:"user_input"`
}

func (h *JSONHandler) Input(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	text, err := h.Reader.ReadString('\n')
	if err != nil && (err != io.EOF || text == "") {
		return "", err
	}
	text = strings.TrimSpace(text)

	var s string
	if err := json.Unmarshal([]byte(text), &s); err == nil {
		return s, nil
	}
	var obj jsonInput
	if strings.HasPrefix(text, "{") {
		if err := json.Unmarshal([]byte(text), &obj); err == nil {
			return obj.UserInput, nil
		}
	}
	return text, nil
}

func (h *JSONHandler) Output(ctx context.Context, state domain.TurnState) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.encoder.Encode(state)
}

func (h *JSONHandler) SystemOutput(ctx context.Context, msg string) error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.encoder.Encode(map[string]string{"system": msg})
}
