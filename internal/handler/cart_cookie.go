package handler

import (
	"net/http"
	"strings"
	"time"

	"juneberry/internal/config"
	"juneberry/internal/domain/cart"

	"github.com/labstack/echo/v4"
	"github.com/sirupsen/logrus"
)

// CartCookies はカートの Cookie 読み書きをまとめる。
// 名前・有効期限はどの経路でも同じ値を使う。
type CartCookies struct {
	name   string
	ttl    time.Duration
	secure bool
	log    logrus.FieldLogger
}

func NewCartCookies(cfg config.Config, log logrus.FieldLogger) *CartCookies {
	return &CartCookies{
		name:   cfg.CartCookieName,
		ttl:    cfg.CartCookieTTL,
		secure: cfg.CookieSecure,
		log:    log,
	}
}

// Load はリクエストの Cookie から Store を作る。変更はレスポンスの Cookie に書き出される。
func (cc *CartCookies) Load(c echo.Context) *cart.Store {
	store := cart.NewStore(cart.PersistFunc(func(items []cart.LineItem) {
		cc.write(c, items)
	}))
	if ck, err := c.Cookie(cc.name); err == nil {
		store.Hydrate(ck.Value)
	}
	return store
}

// Clear は Cookie を失効させる。
func (cc *CartCookies) Clear(c echo.Context) {
	cc.set(c, &http.Cookie{
		Name:     cc.name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Unix(0, 0),
		Secure:   cc.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

func (cc *CartCookies) write(c echo.Context, items []cart.LineItem) {
	if len(items) == 0 {
		cc.Clear(c)
		return
	}

	raw, err := cart.Encode(items)
	if err != nil {
		cc.log.WithError(err).Error("cart cookie encode failed")
		return
	}
	if len(raw) > cart.MaxEncodedSize {
		cc.log.WithFields(logrus.Fields{
			"size":  len(raw),
			"lines": len(items),
		}).Warn("cart cookie exceeds browser size limit")
	}

	//クライアントのJSからも読むので HttpOnly にしない
	cc.set(c, &http.Cookie{
		Name:     cc.name,
		Value:    raw,
		Path:     "/",
		MaxAge:   int(cc.ttl.Seconds()),
		Expires:  time.Now().Add(cc.ttl),
		Secure:   cc.secure,
		SameSite: http.SameSiteLaxMode,
	})
}

// 同じ名前の Set-Cookie は最後の1つだけ残す
func (cc *CartCookies) set(c echo.Context, ck *http.Cookie) {
	h := c.Response().Header()
	prefix := cc.name + "="
	var kept []string
	for _, v := range h.Values("Set-Cookie") {
		if !strings.HasPrefix(v, prefix) {
			kept = append(kept, v)
		}
	}
	h.Del("Set-Cookie")
	for _, v := range kept {
		h.Add("Set-Cookie", v)
	}
	c.SetCookie(ck)
}
