package routes

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/GG-Muniz/FlavorLab-sub000/controllers"
	"github.com/GG-Muniz/FlavorLab-sub000/ledger"
	"github.com/GG-Muniz/FlavorLab-sub000/middlewares"
	"github.com/GG-Muniz/FlavorLab-sub000/services"
)

// Deps are the services the router wires into controllers. Push may be nil,
// in which case device routes are not mounted.
type Deps struct {
	DB        *gorm.DB
	JWTSecret string
	Logger    *logrus.Logger

	Ledger   *services.LedgerService
	Notes    *services.NoteService
	MealPlan *services.MealPlanService
	Hub      *services.RealtimeHub
	Push     *services.PushService
}

func SetupRouter(d Deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), middlewares.RequestLogger(d.Logger))

	r.GET("/healthz", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })

	api := r.Group(ledger.APIPrefix)
	api.Use(middlewares.AuthMiddleware(d.JWTSecret, d.DB))

	mc := controllers.NewMealController(d.Ledger)
	meals := api.Group("/meals")
	{
		meals.GET("", mc.List)
		meals.POST("/log-manual", mc.LogManual)
		meals.POST("/log-from-template/:templateId", mc.LogFromTemplate)
		meals.POST("/templates", mc.CreateTemplate)
		meals.PUT("/:logId", mc.Update)
		meals.DELETE("/:logId", mc.Delete)
	}

	cc := controllers.NewCalorieController(d.Ledger)
	calorie := api.Group("/calorie")
	{
		calorie.GET("/summary", cc.Summary)
		calorie.PUT("/goal", cc.SetGoal)
		calorie.GET("/history", cc.History)
	}

	nc := controllers.NewNoteController(d.Notes)
	notes := api.Group("/notes")
	{
		notes.GET("/:date", nc.Get)
		notes.PUT("/:date", nc.Save)
		notes.DELETE("/:date", nc.Delete)
	}

	pc := controllers.NewMealPlanController(d.MealPlan)
	api.POST("/users/me/meal-plan", pc.Generate)

	rc := controllers.NewRealtimeController(d.Hub)
	api.GET("/ws/ledger", rc.LedgerWS)

	if d.Push != nil {
		dc := controllers.NewDeviceController(d.Push)
		api.POST("/devices", dc.Register)
		api.POST("/notifications/toggle", dc.ToggleNotifications)
	}

	return r
}
