package database

import (
	"strings"
	"testing"
	"time"

	"github.com/callplan/callplan/internal/config"
)

func TestSlowThreshold(t *testing.T) {
	tests := []struct {
		name string
		cfg  *config.DatabaseConfig
		want time.Duration
	}{
		{"配置指定阈值", &config.DatabaseConfig{SlowQueryThreshold: 250 * time.Millisecond}, 250 * time.Millisecond},
		{"阈值为零回退默认", &config.DatabaseConfig{}, defaultSlowQuery},
		{"阈值为负回退默认", &config.DatabaseConfig{SlowQueryThreshold: -time.Second}, defaultSlowQuery},
		{"无配置回退默认", nil, defaultSlowQuery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db := &DB{cfg: tt.cfg}
			if got := db.slowThreshold(); got != tt.want {
				t.Errorf("slowThreshold() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTruncateQuery(t *testing.T) {
	short := "SELECT 1"
	if got := truncateQuery(short); got != short {
		t.Errorf("短查询不应被截断: %q", got)
	}

	long := strings.Repeat("x", 300)
	got := truncateQuery(long)
	if len(got) != 203 || !strings.HasSuffix(got, "...") {
		t.Errorf("长查询应截断为200字符加省略号, got len=%d", len(got))
	}
}
