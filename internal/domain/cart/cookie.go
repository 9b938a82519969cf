package cart

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
)

var (
	ErrEmptyCookie  = errors.New("empty cart cookie")
	ErrCartTooLarge = errors.New("cart does not fit in cookie")
)

// ブラウザの1 Cookie 上限(約4KB)から名前と属性の分を引いた値
const MaxEncodedSize = 3800

// Encode は明細をCookieに入れられる文字列にする（JSON配列をURLエスケープ）。
func Encode(items []LineItem) (string, error) {
	if items == nil {
		items = []LineItem{}
	}
	b, err := json.Marshal(items)
	if err != nil {
		return "", fmt.Errorf("marshal cart items: %w", err)
	}
	return url.QueryEscape(string(b)), nil
}

// Decode は Encode の逆。エスケープされていない生のJSONも受け付ける。
func Decode(raw string) ([]LineItem, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, ErrEmptyCookie
	}

	s, err := url.QueryUnescape(raw)
	if err != nil {
		return nil, fmt.Errorf("unescape cart cookie: %w", err)
	}

	var items []LineItem
	if err := json.Unmarshal([]byte(s), &items); err != nil {
		return nil, fmt.Errorf("unmarshal cart cookie: %w", err)
	}
	return items, nil
}
