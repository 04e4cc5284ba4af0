package main

import (
	"context"
	"embed"
	"html/template"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"sync"
	"syscall"
	"time"

	"examprep/internal/client"
	"examprep/internal/view"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

//go:embed templates/*.html
var templateFS embed.FS

const sessionIDKey = "sid"

func init() {
	if err := godotenv.Load(); err != nil {
		if !os.IsNotExist(err) {
			log.Fatalf("FATAL: error loading .env file: %v", err)
		}
		log.Println("Warning: .env file not found. Relying on system environment variables.")
	}
}

// app maps browser sessions to their view controllers.
type app struct {
	mu          sync.Mutex
	controllers map[string]*view.Controller
	backend     view.Generator
}

// controller returns the controller for this browser session, creating the
// session id and controller on first sight.
func (a *app) controller(c *gin.Context) *view.Controller {
	session := sessions.Default(c)
	sid, _ := session.Get(sessionIDKey).(string)
	if sid == "" {
		sid = uuid.New().String()
		session.Set(sessionIDKey, sid)
		if err := session.Save(); err != nil {
			log.Printf("WARN: failed to save session: %v", err)
		}
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	ctrl, ok := a.controllers[sid]
	if !ok {
		ctrl = view.NewController(a.backend)
		a.controllers[sid] = ctrl
	}
	return ctrl
}

func (a *app) handleIndex(c *gin.Context) {
	ctrl := a.controller(c)
	c.HTML(http.StatusOK, "index.html", ctrl.Snapshot())
}

func (a *app) handleGenerateMCQ(c *gin.Context) {
	ctrl := a.controller(c)

	// The topic input is required in the form; an empty post is ignored.
	topic := strings.TrimSpace(c.PostForm("topic"))
	if topic == "" {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	ctrl.SetTopic(topic)
	if count, err := strconv.Atoi(c.PostForm("count")); err == nil {
		ctrl.SetCount(count)
	}

	// Run the cycle in the background so the page can show the loading
	// state; the request is not tied to this HTTP request's lifetime.
	go ctrl.SubmitMCQ(context.Background())
	c.Redirect(http.StatusSeeOther, "/")
}

func (a *app) handleGeneratePoints(c *gin.Context) {
	ctrl := a.controller(c)

	topic := strings.TrimSpace(c.PostForm("topic"))
	if topic == "" {
		c.Redirect(http.StatusSeeOther, "/")
		return
	}
	ctrl.SetTopic(topic)
	if count, err := strconv.Atoi(c.PostForm("count")); err == nil {
		ctrl.SetCount(count)
	}

	go ctrl.SubmitPoints(context.Background())
	c.Redirect(http.StatusSeeOther, "/")
}

func (a *app) handleReveal(c *gin.Context) {
	ctrl := a.controller(c)
	if index, err := strconv.Atoi(c.PostForm("index")); err == nil {
		ctrl.ToggleReveal(index)
	}
	c.Redirect(http.StatusSeeOther, "/")
}

func (a *app) handleReset(c *gin.Context) {
	a.controller(c).Reset()
	c.Redirect(http.StatusSeeOther, "/")
}

func main() {
	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		secret = uuid.New().String()
		log.Println("WARNING: SESSION_SECRET not set; using a random per-process secret")
	}
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})

	a := &app{
		controllers: make(map[string]*view.Controller),
		backend:     client.New(),
	}

	router := gin.Default()
	router.Use(sessions.Sessions("examprep_session", store))
	router.SetHTMLTemplate(template.Must(template.ParseFS(templateFS, "templates/*.html")))

	router.GET("/", a.handleIndex)
	router.POST("/generate/mcq", a.handleGenerateMCQ)
	router.POST("/generate/points", a.handleGeneratePoints)
	router.POST("/reveal", a.handleReveal)
	router.POST("/reset", a.handleReset)

	port := os.Getenv("WEB_PORT")
	if port == "" {
		port = "8080"
	}

	server := &http.Server{
		Addr:    ":" + port,
		Handler: router,
	}

	go func() {
		log.Printf("Web UI listening on port %s", port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start web server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down web server...")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Web server forced to shutdown: %v", err)
	}

	log.Println("Web server exited properly")
}
