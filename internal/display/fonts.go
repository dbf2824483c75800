package display

import (
	"os"
	"sync"

	"github.com/golang/freetype/truetype"

	"rubik-device/internal/logger"
)

// FontWeight 字体粗细
type FontWeight int

const (
	FontWeightRegular FontWeight = iota
	FontWeightBold
)

// 树莓派 OS 自带 DejaVu；其他发行版做兜底搜索
var regularFontPaths = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans.ttf",
	"/usr/share/fonts/TTF/DejaVuSans.ttf",
	"/Library/Fonts/Arial Unicode.ttf",
}

var boldFontPaths = []string{
	"/usr/share/fonts/truetype/dejavu/DejaVuSans-Bold.ttf",
	"/usr/share/fonts/dejavu/DejaVuSans-Bold.ttf",
	"/usr/share/fonts/TTF/DejaVuSans-Bold.ttf",
}

var (
	fontManager     *FontManager
	fontManagerOnce sync.Once
)

// FontManager 字体管理器
type FontManager struct {
	regular *truetype.Font
	bold    *truetype.Font
}

// GetFontManager 获取字体管理器单例
func GetFontManager() *FontManager {
	fontManagerOnce.Do(func() {
		fontManager = &FontManager{}
		fontManager.loadFonts()
	})
	return fontManager
}

// loadFonts 加载字体
// 优先使用环境变量指定的字体文件，否则按已知路径搜索。
func (fm *FontManager) loadFonts() {
	if p := os.Getenv("RUBIK_FONT_PATH"); p != "" {
		if f := parseFontFile(p); f != nil {
			fm.regular = f
			fm.bold = f
			logger.Info("字体加载成功: %s", p)
			return
		}
		logger.Warn("环境变量指定的字体不可用: %s", p)
	}

	for _, p := range regularFontPaths {
		if f := parseFontFile(p); f != nil {
			fm.regular = f
			break
		}
	}
	for _, p := range boldFontPaths {
		if f := parseFontFile(p); f != nil {
			fm.bold = f
			break
		}
	}

	if fm.regular == nil {
		logger.Error("未找到可用字体，文本将无法渲染")
		return
	}
	if fm.bold == nil {
		// 没有粗体就复用常规体
		fm.bold = fm.regular
	}
	logger.Info("字体加载完成")
}

func parseFontFile(path string) *truetype.Font {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil
	}
	f, err := truetype.Parse(data)
	if err != nil {
		logger.Warn("字体解析失败 %s: %v", path, err)
		return nil
	}
	return f
}

// GetFont 获取字体
func (fm *FontManager) GetFont(weight FontWeight) *truetype.Font {
	if weight == FontWeightBold {
		return fm.bold
	}
	return fm.regular
}
