package views

import (
	"log"
	"net/http"

	"github.com/GrainArc/SampleMap/methods"
	"github.com/GrainArc/SampleMap/models"
	"github.com/gin-gonic/gin"
)

type UserController struct{}

// getSession 取当前请求的会话。首次出现的会话ID会触发一次同步的数据加载。
// 会话ID从请求头X-Session-Id或查询参数sid获取，都没有时按单机模式使用local会话
func getSession(c *gin.Context) *models.Session {
	sid := c.GetHeader("X-Session-Id")
	if sid == "" {
		sid = c.Query("sid")
	}
	if sid == "" {
		sid = "local"
	}
	s, id, created := models.Sessions.GetOrCreate(sid)
	if created {
		s.Lock()
		if err := methods.LoadSessionData(s); err != nil {
			log.Printf("会话 %s 初始化加载失败: %v", id, err)
		}
		s.Unlock()
	}
	c.Header("X-Session-Id", id)
	return s
}

// lockReady 锁定会话并检查必要数据是否就绪。
// 必要配置加载失败时一律返回503，修正配置并Reload之前拒绝交互
func lockReady(c *gin.Context) (*models.Session, bool) {
	s := getSession(c)
	s.Lock()
	if s.LoadErr != nil {
		err := s.LoadErr
		s.Unlock()
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return nil, false
	}
	return s, true
}
