package main

import (
	"log"

	"github.com/GrainArc/SampleMap/config"
	"github.com/GrainArc/SampleMap/routers"
	"github.com/gin-gonic/gin"
)

func main() {
	// 必要配置缺失属于致命错误，不进入交互状态
	if err := config.Load("config.xml"); err != nil {
		log.Fatalf("配置加载失败: %v", err)
	}

	r := gin.Default()
	routers.SampleRouters(r)

	log.Println("采样服务启动:", config.MainRouter)
	if err := r.Run(config.MainRouter); err != nil {
		log.Fatalf("服务启动失败: %v", err)
	}
}
