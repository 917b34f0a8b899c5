package bot

import (
	"encoding/json"
	"errors"
	"net/http"
)

// NewAdminMux 监控与管理接口：/metrics、/admin/config、/healthz
func NewAdminMux(engine *Engine, metrics *BotMetrics) *http.ServeMux {
	mux := http.NewServeMux()
	mux.HandleFunc("/admin/config", HandleAdminConfig(engine))
	mux.HandleFunc("/metrics", HandleMetrics(metrics))
	mux.HandleFunc("/healthz", HandleHealthz)
	return mux
}

// HandleHealthz 存活探测
func HandleHealthz(w http.ResponseWriter, r *http.Request) {
	_, _ = w.Write([]byte("ok"))
}

// HandleAdminConfig 提供算法配置的读取与切换（下一个 tick 生效）
// GET /admin/config   返回当前算法与洪泛上限
// POST /admin/config  载荷 {"algorithm":"quadrant"}
func HandleAdminConfig(engine *Engine) http.HandlerFunc {
	type cfg struct {
		Algorithm   *string  `json:"algorithm,omitempty"`
		FloodBudget int      `json:"floodBudget,omitempty"`
		Available   []string `json:"available,omitempty"`
	}

	return func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			name := engine.Algorithm().Name()
			cur := cfg{Algorithm: &name, FloodBudget: engine.Budget(), Available: AlgorithmNames()}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(cur)
		case http.MethodPost:
			var body cfg
			if err := json.NewDecoder(r.Body).Decode(&body); err != nil || body.Algorithm == nil {
				http.Error(w, "invalid json", http.StatusBadRequest)
				return
			}
			if err := engine.Use(*body.Algorithm); err != nil {
				if errors.Is(err, ErrUnknownAlgorithm) {
					http.Error(w, err.Error(), http.StatusBadRequest)
					return
				}
				http.Error(w, err.Error(), http.StatusInternalServerError)
				return
			}
			w.Header().Set("Content-Type", "application/json")
			_ = json.NewEncoder(w).Encode(map[string]any{"ok": true})
			Log.Infof("config updated: algorithm=%s", *body.Algorithm)
		default:
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		}
	}
}

// HandleMetrics 输出运行指标
// GET /metrics
func HandleMetrics(metrics *BotMetrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{"metrics": metrics.Snapshot()})
	}
}
