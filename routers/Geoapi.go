package routers

import (
	"github.com/GrainArc/SampleMap/tile_proxy"
	"github.com/GrainArc/SampleMap/views"
	"github.com/gin-gonic/gin"
)

func SampleRouters(r *gin.Engine) {
	UserController := &views.UserController{}

	sampleRouter := r.Group("/sample")
	{
		sampleRouter.POST("/Capture", UserController.Capture)
		sampleRouter.GET("/ShowFeatures", UserController.ShowFeatures)
		sampleRouter.GET("/FeatureTable", UserController.FeatureTable)
		sampleRouter.GET("/DelFeature", UserController.DelFeature)
		sampleRouter.GET("/ClearFeatures", UserController.ClearFeatures)
		sampleRouter.GET("/Summary", UserController.Summary)

		sampleRouter.GET("/DownloadGeojson", UserController.DownloadGeojson)
		sampleRouter.GET("/DownloadEE", UserController.DownloadEE)
		sampleRouter.GET("/DownloadAll", UserController.DownloadAll)
		sampleRouter.POST("/UploadTraining", UserController.UploadTraining)
		sampleRouter.Static("/OutFile", "./OutFile")
	}

	layerRouter := r.Group("/layer")
	{
		layerRouter.GET("/GetAOI", UserController.GetAOI)
		layerRouter.GET("/GetBasemap", UserController.GetBasemap)
		layerRouter.GET("/GetBasemap.webp", UserController.GetBasemapWebp)
		layerRouter.GET("/GetClassTable", UserController.GetClassTable)
		layerRouter.GET("/GetLegend", UserController.GetLegend)
		layerRouter.GET("/ViewState", UserController.GetViewState)
		layerRouter.POST("/ViewState", UserController.SetViewState)
		layerRouter.GET("/Reload", UserController.Reload)
		layerRouter.GET("/ClearLoaded", UserController.ClearLoaded)
	}

	tileService := tile_proxy.NewTileProxyService()
	tileService.RegisterRoutes(r.Group("/tiles"))
}
