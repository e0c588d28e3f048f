package fonts

import (
	"fmt"
	"strings"

	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/gomono"
	"golang.org/x/image/font/gofont/goregular"
)

// builtin 将内置字体名映射为 gofont 提供的 TTF 字节数据。
var builtin = map[string][]byte{
	"Go-Regular": goregular.TTF,
	"Go-Bold":    gobold.TTF,
	"Go-Italic":  goitalic.TTF,
	"Go-Mono":    gomono.TTF,
}

// Load 返回内置字体的字节数据，name 可写为 "builtin:Go-Regular" 或直接 "Go-Regular"。
func Load(name string) ([]byte, error) {
	key := strings.TrimPrefix(strings.TrimPrefix(name, "built-in:"), "builtin:")
	data, ok := builtin[key]
	if !ok {
		return nil, fmt.Errorf("找不到内置字体 %s", key)
	}
	return data, nil
}
