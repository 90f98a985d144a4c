package blepkt

// Style DIY场景动画样式
// 样式字节位于DIY包的字节3，取值0-4
type Style uint8

const (
	StyleFade    Style = 0x00 // 渐变
	StyleJumping Style = 0x01 // 跳变
	StyleFlicker Style = 0x02 // 闪烁
	StyleMarquee Style = 0x03 // 跑马灯
	StyleMusic   Style = 0x04 // 音乐律动
)

// styleNames 样式与显示名的双向映射表（显示名与Govee App一致）
var styleNames = map[Style]string{
	StyleFade:    "Fade",
	StyleJumping: "Jumping",
	StyleFlicker: "Flicker",
	StyleMarquee: "Marquee",
	StyleMusic:   "Music",
}

// String 返回样式显示名，未知值返回空字符串
func (s Style) String() string {
	return styleNames[s]
}

// StyleFromName 按显示名查找样式
func StyleFromName(name string) (Style, bool) {
	for s, n := range styleNames {
		if n == name {
			return s, true
		}
	}
	return 0, false
}

// StyleNames 返回全部样式显示名（按样式值升序）
func StyleNames() []string {
	names := make([]string, 0, len(styleNames))
	for s := StyleFade; s <= StyleMusic; s++ {
		names = append(names, styleNames[s])
	}
	return names
}
