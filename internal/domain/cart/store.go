package cart

// 変更のたびに明細全体を書き出す先（Cookieなど）。
type Persister interface {
	Persist(items []LineItem)
}

// PersistFunc は関数を Persister として使うためのアダプタ。
type PersistFunc func(items []LineItem)

func (f PersistFunc) Persist(items []LineItem) { f(items) }

// カートの見え方（合計は明細から毎回計算する）
type State struct {
	Items          []LineItem `json:"items"`
	TotalItemCount int64      `json:"total_item_count"`
	TotalPrice     int64      `json:"total_price"`
}

// Store はブラウザセッション1つ分のカート。
// 操作は呼ばれた順に反映され、各変更の後に Persister へ書き出す。
// goroutine-safe ではない（1リクエスト/1セッションで使う）。
type Store struct {
	items      []LineItem
	totalCount int64
	totalPrice int64
	persister  Persister
}

// persister が nil のときは書き出さない。
func NewStore(persister Persister) *Store {
	return &Store{persister: persister}
}

// Hydrate はCookieの値から状態を復元する。
// 壊れた値は空カートとして扱い、エラーにはしない。
// 範囲外の明細は捨て、重複キーの合算は MaxQuantity で止める。
func (s *Store) Hydrate(raw string) {
	s.items = nil

	items, err := Decode(raw)
	if err != nil {
		s.recompute()
		return
	}

	for _, it := range items {
		if it.validate() != nil {
			continue
		}
		if i := s.indexOf(it.Key()); i >= 0 {
			s.items[i].Quantity = min(s.items[i].Quantity+it.Quantity, MaxQuantity)
			continue
		}
		s.items = append(s.items, it)
	}
	s.recompute()
}

// AddItem は同じキーがあれば数量を加算、無ければ末尾に追加する。
// 加算後に MaxQuantity を超える場合は ErrQuantityLimit、
// Cookie に収まらない場合は ErrCartTooLarge で、どちらも状態は変えない。
func (s *Store) AddItem(item LineItem) (State, error) {
	if err := item.validate(); err != nil {
		return s.State(), err
	}

	next := s.Items()
	if i := s.indexOf(item.Key()); i >= 0 {
		if next[i].Quantity > MaxQuantity-item.Quantity {
			return s.State(), ErrQuantityLimit
		}
		next[i].Quantity += item.Quantity
	} else {
		next = append(next, item)
	}
	if raw, err := Encode(next); err == nil && len(raw) > MaxEncodedSize {
		return s.State(), ErrCartTooLarge
	}

	s.items = next
	s.commit()
	return s.State(), nil
}

// 無ければ何もしない（エラーにしない）
func (s *Store) RemoveItem(articleID, selectedSize string) State {
	if i := s.indexOf(Key{ArticleID: articleID, SelectedSize: selectedSize}); i >= 0 {
		s.items = append(s.items[:i], s.items[i+1:]...)
	}
	s.commit()
	return s.State()
}

// 数量は max(0, q) を MaxQuantity で頭打ちにする。0になった明細は削除する。
func (s *Store) UpdateQuantity(articleID, selectedSize string, quantity int64) State {
	if i := s.indexOf(Key{ArticleID: articleID, SelectedSize: selectedSize}); i >= 0 {
		if quantity <= 0 {
			s.items = append(s.items[:i], s.items[i+1:]...)
		} else {
			s.items[i].Quantity = min(quantity, MaxQuantity)
		}
	}
	s.commit()
	return s.State()
}

func (s *Store) Clear() State {
	s.items = nil
	s.commit()
	return s.State()
}

func (s *Store) IsInCart(articleID, selectedSize string) bool {
	return s.indexOf(Key{ArticleID: articleID, SelectedSize: selectedSize}) >= 0
}

// 無ければ0
func (s *Store) Quantity(articleID, selectedSize string) int64 {
	if i := s.indexOf(Key{ArticleID: articleID, SelectedSize: selectedSize}); i >= 0 {
		return s.items[i].Quantity
	}
	return 0
}

// Items は明細のコピーを返す。
func (s *Store) Items() []LineItem {
	out := make([]LineItem, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) TotalItemCount() int64 { return s.totalCount }

func (s *Store) TotalPrice() int64 { return s.totalPrice }

func (s *Store) IsEmpty() bool { return len(s.items) == 0 }

func (s *Store) State() State {
	return State{
		Items:          s.Items(),
		TotalItemCount: s.totalCount,
		TotalPrice:     s.totalPrice,
	}
}

func (s *Store) indexOf(k Key) int {
	for i := range s.items {
		if s.items[i].Key() == k {
			return i
		}
	}
	return -1
}

// 合計を再計算してから書き出す
func (s *Store) commit() {
	s.recompute()
	if s.persister != nil {
		s.persister.Persist(s.Items())
	}
}

func (s *Store) recompute() {
	var count, price int64
	for _, it := range s.items {
		count += it.Quantity
		price += it.Subtotal()
	}
	s.totalCount = count
	s.totalPrice = price
}
