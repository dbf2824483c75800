package logger

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

var (
	infoLogger  *log.Logger
	warnLogger  *log.Logger
	errorLogger *log.Logger
	debugLogger *log.Logger
	logFile     *os.File

	logMu           sync.Mutex
	lastRotateCheck int64 // unix nano
)

const (
	// MaxLogSizeBytes 单文件最大 2MB，超过就轮转（SD 卡空间有限）
	MaxLogSizeBytes int64 = 2 * 1024 * 1024
	// MaxRotatedFiles 保留最近 N 份轮转文件（不含当前 robot.log）
	MaxRotatedFiles = 2
)

// InitLogger 初始化日志系统
// 优先使用环境变量指定日志目录；否则使用默认 /var/log/rubik；
// 无权限时自动降级到临时目录。
func InitLogger() error {
	logDir := os.Getenv("RUBIK_LOG_DIR")
	if logDir == "" {
		logDir = "/var/log/rubik"
	}
	if err := os.MkdirAll(logDir, 0755); err != nil {
		fallback := filepath.Join(os.TempDir(), "rubik")
		if err2 := os.MkdirAll(fallback, 0755); err2 != nil {
			return err
		}
		logDir = fallback
	}

	logPath := filepath.Join(logDir, "robot.log")

	file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		// 目录可建但文件打开仍可能因权限失败
		fallback := filepath.Join(os.TempDir(), "rubik")
		_ = os.MkdirAll(fallback, 0755)
		logPath = filepath.Join(fallback, "robot.log")
		file, err = os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
		if err != nil {
			return err
		}
	}
	logFile = file

	// 同时写入文件和控制台
	multiWriter := io.MultiWriter(os.Stdout, logFile)

	infoLogger = log.New(multiWriter, "[INFO] ", log.Ldate|log.Ltime|log.Lshortfile)
	warnLogger = log.New(multiWriter, "[WARN] ", log.Ldate|log.Ltime|log.Lshortfile)
	errorLogger = log.New(multiWriter, "[ERROR] ", log.Ldate|log.Ltime|log.Lshortfile)
	debugLogger = log.New(multiWriter, "[DEBUG] ", log.Ldate|log.Ltime|log.Lshortfile)

	return nil
}

func maybeRotateLocked() {
	// 限流：最多 1 秒检查一次，避免每条日志都 stat
	now := time.Now().UnixNano()
	last := atomic.LoadInt64(&lastRotateCheck)
	if last != 0 && now-last < int64(time.Second) {
		return
	}
	atomic.StoreInt64(&lastRotateCheck, now)
	_ = rotateLocked(MaxLogSizeBytes)
}

func output(l *log.Logger, format string, v ...interface{}) {
	logMu.Lock()
	defer logMu.Unlock()
	maybeRotateLocked()
	if l != nil {
		l.Output(3, fmt.Sprintf(format, v...))
	}
}

// Info 记录信息日志
func Info(format string, v ...interface{}) { output(infoLogger, format, v...) }

// Warn 记录警告日志
func Warn(format string, v ...interface{}) { output(warnLogger, format, v...) }

// Error 记录错误日志
func Error(format string, v ...interface{}) { output(errorLogger, format, v...) }

// Debug 记录调试日志
func Debug(format string, v ...interface{}) { output(debugLogger, format, v...) }

// Fatal 记录致命错误并退出
func Fatal(format string, v ...interface{}) {
	output(errorLogger, format, v...)
	os.Exit(1)
}

// Close 关闭日志文件
func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	if logFile != nil {
		logFile.Close()
	}
}

func cleanupRotatedLogs(dir string) {
	// 清理旧轮转日志：robot.YYYYMMDD-HHMMSS.log
	matches, _ := filepath.Glob(filepath.Join(dir, "robot.*.log"))
	if len(matches) <= MaxRotatedFiles {
		return
	}
	type fi struct {
		path string
		mod  time.Time
	}
	arr := make([]fi, 0, len(matches))
	for _, p := range matches {
		if st, err := os.Stat(p); err == nil {
			arr = append(arr, fi{path: p, mod: st.ModTime()})
		}
	}
	sort.Slice(arr, func(i, j int) bool { return arr[i].mod.After(arr[j].mod) })
	for i := MaxRotatedFiles; i < len(arr); i++ {
		_ = os.Remove(arr[i].path)
	}
}

// rotateLocked 按大小轮转；调用方需持有 logMu
func rotateLocked(maxSize int64) error {
	if logFile == nil {
		return nil
	}

	stat, err := logFile.Stat()
	if err != nil {
		return err
	}
	if stat.Size() < maxSize {
		return nil
	}

	logFile.Close()

	baseDir := filepath.Dir(logFile.Name())
	oldPath := filepath.Join(baseDir, "robot.log")
	newPath := filepath.Join(baseDir, fmt.Sprintf("robot.%s.log", time.Now().Format("20060102-150405")))
	os.Rename(oldPath, newPath)

	file, err := os.OpenFile(oldPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		return err
	}
	logFile = file

	multiWriter := io.MultiWriter(os.Stdout, logFile)
	infoLogger.SetOutput(multiWriter)
	warnLogger.SetOutput(multiWriter)
	errorLogger.SetOutput(multiWriter)
	debugLogger.SetOutput(multiWriter)

	cleanupRotatedLogs(baseDir)
	return nil
}
