package router

import (
	"sort"
	"sync"

	"github.com/gin-gonic/gin"
)

// PublicModule 挂在 /api 下，无需登录；PrivateModule 挂在鉴权分组
// 模块可选择实现其中一个或两个接口
type PublicModule interface{ MountPublic(*gin.RouterGroup) }
type PrivateModule interface{ MountPrivate(*gin.RouterGroup) }

// 可选：实现该接口可控制挂载顺序（数值越小越先挂）
// 不实现则默认 100
type prioritizer interface{ Priority() int }

type Registry struct {
	mu          sync.RWMutex
	publicMods  []PublicModule
	privateMods []PrivateModule
}

func NewRegistry(mods ...any) *Registry {
	r := &Registry{}
	for _, m := range mods {
		r.Register(m)
	}
	return r
}

// Register 根据类型断言分发到 public/private 列表
func (r *Registry) Register(mod any) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if m, ok := mod.(PublicModule); ok {
		r.publicMods = append(r.publicMods, m)
	}
	if m, ok := mod.(PrivateModule); ok {
		r.privateMods = append(r.privateMods, m)
	}
}

func (r *Registry) MountPublic(g *gin.RouterGroup) {
	r.mu.RLock()
	mods := append([]PublicModule(nil), r.publicMods...)
	r.mu.RUnlock()

	sort.SliceStable(mods, func(i, j int) bool {
		return priorityOf(mods[i]) < priorityOf(mods[j])
	})
	for _, m := range mods {
		m.MountPublic(g)
	}
}

func (r *Registry) MountPrivate(g *gin.RouterGroup) {
	r.mu.RLock()
	mods := append([]PrivateModule(nil), r.privateMods...)
	r.mu.RUnlock()

	sort.SliceStable(mods, func(i, j int) bool {
		return priorityOf(mods[i]) < priorityOf(mods[j])
	})
	for _, m := range mods {
		m.MountPrivate(g)
	}
}

func priorityOf(v any) int {
	if p, ok := v.(prioritizer); ok {
		return p.Priority()
	}
	return 100
}
