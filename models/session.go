package models

import (
	"sync"

	"github.com/google/uuid"
	"github.com/paulmach/orb/geojson"
)

// ViewState 地图视图状态，跟随会话保存，避免页面刷新后丢失定位
type ViewState struct {
	CenterLon      float64 `json:"CenterLon"`
	CenterLat      float64 `json:"CenterLat"`
	Zoom           int     `json:"Zoom"`
	InitialFitDone bool    `json:"InitialFitDone"`
}

// DefaultViewState 世界视图
func DefaultViewState() ViewState {
	return ViewState{CenterLon: 0, CenterLat: 0, Zoom: 2}
}

// OverlayImage 底图GeoTIFF渲染出的叠加图及其地理范围
type OverlayImage struct {
	PNG    []byte
	WebP   []byte
	Bounds [2][2]float64 // [[south, west], [north, east]]
	Bands  int
	Width  int
	Height int
}

// Session 单个用户会话的全部状态。不做持久化，会话结束即丢失。
// 每次交互处理完才接受下一次，由互斥锁保证
type Session struct {
	mu sync.Mutex

	Features     []*Feature
	Counter      int             // 要素ID计数器，只增不减
	LastCaptured *SampleGeometry // 最近一次勾绘的几何，用于重复事件去重

	Table          *ClassTable
	TrainingLoaded bool // 训练数据只在会话内导入一次

	View ViewState

	// 只读展示数据，随显式的加载/清空动作变化
	AOI     *geojson.FeatureCollection
	Overlay *OverlayImage

	// 必要数据加载失败时记录在此，未修正前所有交互返回错误
	LoadErr error
}

func NewSession() *Session {
	return &Session{View: DefaultViewState()}
}

func (s *Session) Lock()   { s.mu.Lock() }
func (s *Session) Unlock() { s.mu.Unlock() }

// SessionManager 按会话ID分发独立的Session，互不共享可变状态
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionManager() *SessionManager {
	return &SessionManager{sessions: make(map[string]*Session)}
}

// GetOrCreate 取会话，不存在则新建。id为空时生成一个新ID
func (m *SessionManager) GetOrCreate(id string) (*Session, string, bool) {
	if id == "" {
		id = uuid.New().String()
	}
	m.mu.RLock()
	s, ok := m.sessions[id]
	m.mu.RUnlock()
	if ok {
		return s, id, false
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok = m.sessions[id]; ok {
		return s, id, false
	}
	s = NewSession()
	m.sessions[id] = s
	return s, id, true
}

// Drop 丢弃会话
func (m *SessionManager) Drop(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
}

// Sessions 全局会话表
var Sessions = NewSessionManager()
