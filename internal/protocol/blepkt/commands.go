package blepkt

// 单包命令编码器。
//
// 所有数值参数一律做饱和钳位（低于下限取下限、高于上限取上限），从不报错：
// 对灯效类尽力而为的控制命令来说，发出一个被轻微修正的包好过一个包都不发。

// DIY包常量
const (
	DIYPacketID = 0xA1 // DIY包标识
	DIYCommand  = 0x02 // DIY命令类型
)

// 通用模式命令常量（0x33 0x05 前缀）
const (
	ModePacketPrefix = 0x33 // 标准命令前缀
	ModeCommand      = 0x05 // 颜色/模式命令

	MusicModeIndicator  = 0x01 // 音乐模式子命令
	SceneSpeedIndicator = 0x02 // 普通场景速度子命令
	SceneActivation     = 0x04 // 场景激活子命令
)

// clamp 饱和钳位到 [lo, hi]
func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// BuildDIYSpeed 构造DIY场景速度控制包
// 布局：A1 02 01 <style> 00 <speed>，speed取0-100（0为静止，100最快）
//
// style字节是硬件怪癖：必须与当前激活DIY场景的动画样式一致，否则设备会
// 静默忽略本条速度命令。样式由调用方提供，编码层不做（也无法做）一致性校验。
func BuildDIYSpeed(speed, style int) []byte {
	speed = clamp(speed, 0, 100)
	style = clamp(style, 0, 4)

	return BuildFrame([]byte{
		DIYPacketID,
		DIYCommand,
		0x01, // 段/模式数量，固定1
		byte(style),
		0x00, // 模式，默认0
		byte(speed),
	})
}

// BuildDIYStyle 构造DIY场景样式控制包
// 布局与BuildDIYSpeed相同，此处style为权威字段，speed默认传50
func BuildDIYStyle(style, speed int) []byte {
	style = clamp(style, 0, 4)
	speed = clamp(speed, 0, 100)

	return BuildFrame([]byte{
		DIYPacketID,
		DIYCommand,
		0x01,
		byte(style),
		0x00,
		byte(speed),
	})
}

// BuildMusicMode 构造音乐模式开关包
// 布局：33 05 01 <enabled 0|1> <sensitivity 0-100>
func BuildMusicMode(enabled bool, sensitivity int) []byte {
	sensitivity = clamp(sensitivity, 0, 100)

	var on byte
	if enabled {
		on = 0x01
	}

	return BuildFrame([]byte{
		ModePacketPrefix,
		ModeCommand,
		MusicModeIndicator,
		on,
		byte(sensitivity),
	})
}

// BuildSceneSpeed 构造普通（非DIY）场景速度包
// 布局：33 05 02 <speed 0-100>，无需携带样式字节
// 协议来源：govee2mqtt / GlowFin 的抓包分析
func BuildSceneSpeed(speed int) []byte {
	speed = clamp(speed, 0, 100)

	return BuildFrame([]byte{
		ModePacketPrefix,
		ModeCommand,
		SceneSpeedIndicator,
		byte(speed),
	})
}

// BuildSceneActivation 构造场景激活包
// 布局：33 05 04 <code_lo> <code_hi>，场景码为16位值，小端拆分
// 多包场景数据（见 BuildMultiFrame）下发完毕后发送本包以激活场景
func BuildSceneActivation(sceneCode int) []byte {
	return BuildFrame([]byte{
		ModePacketPrefix,
		ModeCommand,
		SceneActivation,
		byte(sceneCode & 0xFF),
		byte((sceneCode >> 8) & 0xFF),
	})
}
