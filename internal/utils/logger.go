package utils

import (
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
)

// Log 全局日志；未调用 Init 时也可直接使用（测试场景）
var Log = log.NewWithOptions(os.Stderr, log.Options{
	ReportTimestamp: true,
	TimeFormat:      time.DateTime,
})

// Init 设置日志级别与样式，level: debug / info / warn / error
func Init(level string) {
	Log = log.NewWithOptions(os.Stderr, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Prefix:          "queuebot",
		Level:           ParseLevel(level),
	})

	styles := log.DefaultStyles()
	styles.Levels[log.InfoLevel] = lipgloss.NewStyle().
		SetString("INFO🌟").
		Padding(0, 1, 0, 1).
		Background(lipgloss.Color("#90EE9080")).
		Foreground(lipgloss.Color("#006400FF")).Bold(true)

	styles.Levels[log.WarnLevel] = lipgloss.NewStyle().
		SetString("WARN⚠️").
		Padding(0, 1, 0, 1).
		Background(lipgloss.Color("#FFD700FF")).
		Foreground(lipgloss.Color("#000000FF")).Bold(true)

	styles.Levels[log.ErrorLevel] = lipgloss.NewStyle().
		SetString("ERROR🔥").
		Padding(0, 1, 0, 1).
		Background(lipgloss.Color("#FF0000FF")).
		Foreground(lipgloss.Color("#00FFFF00")).Bold(true)

	styles.Levels[log.FatalLevel] = lipgloss.NewStyle().
		SetString("FATAL⚡️").
		Padding(0, 1, 0, 1).
		Background(lipgloss.Color("#000000FF")).
		Foreground(lipgloss.Color("#00FFFF00")).Bold(true)
	Log.SetStyles(styles)
}

func ParseLevel(level string) log.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return log.DebugLevel
	case "warn", "warning":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}
