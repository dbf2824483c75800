package display

import "image/color"

// HeaderHeight 顶部标题栏高度（逻辑坐标）
const HeaderHeight = 15

// 2.8 寸 TFT 的配色：白底黑字，深蓝标题栏，青绿点缀
var (
	ColorBackground = color.RGBA{255, 255, 255, 255} // 纯白背景
	ColorHeader     = color.RGBA{10, 14, 39, 255}    // 标题栏深蓝
	ColorAccent     = color.RGBA{0, 200, 160, 255}   // 青绿（时钟/高亮）

	ColorTextPrimary = color.RGBA{0, 0, 0, 255}       // 正文黑
	ColorTextInvert  = color.RGBA{255, 255, 255, 255} // 深色底上的白字
	ColorTextDebug   = color.RGBA{255, 0, 0, 255}     // 调试红

	// 面板/按钮
	ColorPanel   = color.RGBA{0, 0, 0, 255}     // 设置页黑色面板
	ColorGray    = color.RGBA{65, 64, 65, 255}  // 分隔线/箭头
	ColorGreen   = color.RGBA{74, 182, 32, 255} // 选项图标底色
	ColorBlue    = color.RGBA{0, 76, 205, 255}
	ColorPurple  = color.RGBA{98, 56, 180, 255}
	ColorOrange  = color.RGBA{255, 129, 0, 255}
	ColorDangerRed = color.RGBA{239, 68, 68, 255} // 停止/关机

	// 进度条
	ColorProgressTrack = color.RGBA{226, 232, 240, 255}
	ColorProgressFill  = color.RGBA{0, 200, 160, 255}
)
