package method

import (
	"context"
	"encoding/base64"
	"fmt"
)

// Screenshot is a rendered PNG capture together with its base64 form.
type Screenshot struct {
	Data    []byte
	Encoded string
}

// Summary is the confirmation text returned to the caller.
func (s *Screenshot) Summary() string {
	return fmt.Sprintf("Screenshot captured, base64 length: %d", len(s.Encoded))
}

// Screenshot navigates to url and captures the viewport or the full page.
func (m *Method) Screenshot(ctx context.Context, url string, fullPage bool) (*Screenshot, error) {
	if err := m.page.Navigate(ctx, url); err != nil {
		return nil, err
	}
	data, err := m.page.Screenshot(ctx, fullPage)
	if err != nil {
		return nil, err
	}
	return &Screenshot{
		Data:    data,
		Encoded: base64.StdEncoding.EncodeToString(data),
	}, nil
}
