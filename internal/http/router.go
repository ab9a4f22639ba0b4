package httpapi

import (
	"net/http"
	"strings"

	"go.uber.org/zap"
)

// Router 使用标准库 http.ServeMux（避免引入第三方路由依赖）
type Router struct {
	mux    *http.ServeMux
	logger *zap.Logger
}

func NewRouter(logger *zap.Logger) *Router {
	return &Router{
		mux:    http.NewServeMux(),
		logger: logger,
	}
}

func (r *Router) Handle(pattern string, h http.HandlerFunc) {
	r.mux.HandleFunc(pattern, h)
}

func (r *Router) ServeHTTP(w http.ResponseWriter, req *http.Request) {
	r.mux.ServeHTTP(w, req)
}

// RegisterFieldsRoutes 字段配置管理路由
func (r *Router) RegisterFieldsRoutes(h *FieldsHandler) {
	r.Handle("/fields/api/v1/fields", func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodGet:
			h.List(w, req)
		case http.MethodPost:
			h.Create(w, req)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})

	r.Handle("/fields/api/v1/fields/reorder", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPut {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.Reorder(w, req)
	})

	// fields/{id}
	r.Handle("/fields/api/v1/fields/", func(w http.ResponseWriter, req *http.Request) {
		id := strings.TrimPrefix(req.URL.Path, "/fields/api/v1/fields/")
		if id == "" || strings.Contains(id, "/") {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		switch req.Method {
		case http.MethodPut:
			h.Update(w, req, id)
		case http.MethodDelete:
			h.Delete(w, req, id)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}

// RegisterResponsesRoutes 字段填写路由
func (r *Router) RegisterResponsesRoutes(h *ResponsesHandler) {
	r.Handle("/fields/api/v1/my-fields", func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodGet:
			h.GetMyFields(w, req)
		case http.MethodPut:
			h.SaveMyFields(w, req)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})

	// users/{id}/fields 和 users/{id}/fields/export
	r.Handle("/fields/api/v1/users/", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		rest := strings.TrimPrefix(req.URL.Path, "/fields/api/v1/users/")
		parts := strings.Split(rest, "/")
		switch {
		case len(parts) == 2 && parts[0] != "" && parts[1] == "fields":
			h.GetUserFields(w, req, parts[0])
		case len(parts) == 3 && parts[0] != "" && parts[1] == "fields" && parts[2] == "export":
			h.ExportUserFields(w, req, parts[0])
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	})
}

// RegisterCompanyRoutes 公司资料路由
func (r *Router) RegisterCompanyRoutes(h *CompanyHandler) {
	r.Handle("/fields/api/v1/company", func(w http.ResponseWriter, req *http.Request) {
		switch req.Method {
		case http.MethodGet:
			h.Get(w, req)
		case http.MethodPut:
			h.Update(w, req)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
}

// RegisterAdminRoutes 运维路由
func (r *Router) RegisterAdminRoutes(h *AdminHandler) {
	r.Handle("/fields/api/v1/admin/cache/stats", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodGet {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.CacheStats(w, req)
	})

	r.Handle("/fields/api/v1/admin/cache/user-state/clear", func(w http.ResponseWriter, req *http.Request) {
		if req.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		h.ClearUserStateCache(w, req)
	})
}

// RegisterHealthRoutes 健康检查
func (r *Router) RegisterHealthRoutes() {
	r.Handle("/healthz", func(w http.ResponseWriter, req *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
}
