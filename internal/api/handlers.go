package api

import (
	"bytes"
	"image/png"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"rubik-device/internal/logger"
)

func okResponse(data interface{}) gin.H {
	return gin.H{"code": 0, "data": data}
}

func errResponse(code int, msg string) gin.H {
	return gin.H{"code": code, "message": msg}
}

// handleStatus 设备状态：系统快照 + 远程登录 + 求解状态 + 当前页面
func (s *Server) handleStatus(c *gin.Context) {
	c.JSON(http.StatusOK, okResponse(gin.H{
		"system":       s.sys.Snapshot(),
		"remote_users": s.sys.RemoteUsers(),
		"network": gin.H{
			"ip":   s.net.LocalIP(),
			"ssid": s.net.WiFiSSID(),
		},
		"solver": gin.H{
			"running":  s.runner.Running(),
			"progress": s.store.Get(),
		},
		"screen":     s.manager.Current(),
		"ws_clients": s.hub.ClientCount(),
	}))
}

// handleScreenPNG 当前帧截屏
func (s *Server) handleScreenPNG(c *gin.Context) {
	img := s.manager.Snapshot()
	if img == nil {
		c.JSON(http.StatusServiceUnavailable, errResponse(503, "显示缓冲不可用"))
		return
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		c.JSON(http.StatusInternalServerError, errResponse(500, "PNG 编码失败"))
		return
	}
	c.Data(http.StatusOK, "image/png", buf.Bytes())
}

type solveRequest struct {
	Solution string `json:"solution" binding:"required"`
}

// handleSolve 下发解法并开始执行
func (s *Server) handleSolve(c *gin.Context) {
	var req solveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errResponse(400, "参数错误: 需要 solution 字段"))
		return
	}
	solution := strings.TrimSpace(req.Solution)
	if solution == "" {
		c.JSON(http.StatusBadRequest, errResponse(400, "solution 不能为空"))
		return
	}

	if err := s.runner.Start(solution); err != nil {
		c.JSON(http.StatusConflict, errResponse(409, err.Error()))
		return
	}
	logger.Info("API: 开始执行解法 (%d 步)", len(strings.Fields(solution)))

	// 执行中切到进度页
	if err := s.manager.SwitchTo("progress"); err != nil {
		logger.Warn("切换进度页失败: %v", err)
	}

	c.JSON(http.StatusOK, okResponse(gin.H{"started": true}))
}

// handleStop 请求停止当前执行
func (s *Server) handleStop(c *gin.Context) {
	s.runner.Stop()
	c.JSON(http.StatusOK, okResponse(gin.H{"stopping": true}))
}

type touchRequest struct {
	Type string `json:"type"` // tap（默认）/ press / move / release
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

// handleTouch 注入合成触摸事件，台架调试用
func (s *Server) handleTouch(c *gin.Context) {
	var req touchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errResponse(400, "参数错误"))
		return
	}

	switch req.Type {
	case "", "tap":
		s.manager.OnTouchPress(req.X, req.Y)
		s.manager.OnTouchRelease(req.X, req.Y)
	case "press":
		s.manager.OnTouchPress(req.X, req.Y)
	case "move":
		s.manager.OnTouchMove(req.X, req.Y)
	case "release":
		s.manager.OnTouchRelease(req.X, req.Y)
	default:
		c.JSON(http.StatusBadRequest, errResponse(400, "未知触摸类型: "+req.Type))
		return
	}
	c.JSON(http.StatusOK, okResponse(gin.H{"injected": true}))
}
