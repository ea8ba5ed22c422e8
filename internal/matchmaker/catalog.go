package matchmaker

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"
)

// Catalog 启动时由配置确定的 (mode, stake) 全集，运行期不变
type Catalog struct {
	modes    []Mode
	stakes   []decimal.Decimal
	channels map[Mode]string
}

// NewCatalog channels: mode -> 频道 ID；stakes 保持配置顺序
func NewCatalog(channels map[string]string, stakes []decimal.Decimal) (*Catalog, error) {
	if len(channels) == 0 {
		return nil, fmt.Errorf("catalog: no modes configured")
	}
	if len(stakes) == 0 {
		return nil, fmt.Errorf("catalog: no stakes configured")
	}
	c := &Catalog{channels: make(map[Mode]string, len(channels))}
	for name, ch := range channels {
		m := normalizeMode(name)
		if m == "" {
			return nil, fmt.Errorf("catalog: empty mode name")
		}
		if _, dup := c.channels[m]; dup {
			return nil, fmt.Errorf("catalog: duplicate mode %q", m)
		}
		c.channels[m] = ch
		c.modes = append(c.modes, m)
	}
	sort.Slice(c.modes, func(i, j int) bool { return c.modes[i] < c.modes[j] })

	for _, s := range stakes {
		if !s.IsPositive() {
			return nil, fmt.Errorf("catalog: stake %s must be positive", s)
		}
		for _, seen := range c.stakes {
			if seen.Equal(s) {
				return nil, fmt.Errorf("catalog: duplicate stake %s", s)
			}
		}
		c.stakes = append(c.stakes, s)
	}
	return c, nil
}

func (c *Catalog) Modes() []Mode {
	return append([]Mode(nil), c.modes...)
}

func (c *Catalog) Stakes() []decimal.Decimal {
	return append([]decimal.Decimal(nil), c.stakes...)
}

// Channel 返回模式对应的频道 ID
func (c *Catalog) Channel(m Mode) (string, bool) {
	ch, ok := c.channels[m]
	return ch, ok
}

// Keys 按 模式 -> 金额 顺序列出全部队列键
func (c *Catalog) Keys() []QueueKey {
	keys := make([]QueueKey, 0, len(c.modes)*len(c.stakes))
	for _, m := range c.modes {
		for _, s := range c.stakes {
			keys = append(keys, QueueKey{Mode: m, Stake: s})
		}
	}
	return keys
}

// LookupMode 大小写不敏感
func (c *Catalog) LookupMode(name string) (Mode, error) {
	m := normalizeMode(name)
	if _, ok := c.channels[m]; !ok {
		return "", fmt.Errorf("mode %q: %w", name, ErrInvalidKey)
	}
	return m, nil
}

// Key 解析用户输入的模式与金额，返回配置中的规范键
func (c *Catalog) Key(mode, stake string) (QueueKey, error) {
	m, err := c.LookupMode(mode)
	if err != nil {
		return QueueKey{}, err
	}
	v, err := ParseStake(stake)
	if err != nil {
		return QueueKey{}, fmt.Errorf("stake %q: %w", stake, ErrInvalidKey)
	}
	for _, s := range c.stakes {
		if s.Equal(v) {
			return QueueKey{Mode: m, Stake: s}, nil
		}
	}
	return QueueKey{}, fmt.Errorf("stake %q: %w", stake, ErrInvalidKey)
}

// ParseStake 接受 "10"、"10.5"、"10,50"、"R$10"
func ParseStake(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(strings.ToUpper(s), "R$")
	s = strings.ReplaceAll(s, ",", ".")
	return decimal.NewFromString(s)
}

func normalizeMode(name string) Mode {
	return Mode(strings.ToLower(strings.TrimSpace(name)))
}
