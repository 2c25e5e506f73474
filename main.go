package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	intconfig "rutabus/internal/config"
	"rutabus/internal/db"
	router "rutabus/internal/http"
	"rutabus/internal/repositories"
	"rutabus/internal/services"

	"github.com/gin-gonic/gin"
)

func main() {
	seed := flag.Bool("seed", false, "crear rutas iniciales si no existen")
	flag.Parse()

	env := intconfig.LoadEnv()
	if env.GinMode != "" {
		gin.SetMode(env.GinMode)
	}

	conn := intconfig.ConnectDB(env)
	defer intconfig.CloseDB()

	if err := db.EnsureSchema(conn); err != nil {
		log.Fatalf("no se pudo preparar el esquema: %v", err)
	}

	if *seed || env.SeedRoutes {
		svc := services.RouteService{Routes: repositories.RouteRepository{DB: conn}}
		if n, err := svc.SeedInitialRoutes(context.Background()); err != nil {
			log.Printf("seed de rutas falló: %v", err)
		} else if n > 0 {
			log.Printf("seed de rutas: %d creadas", n)
		}
	}

	r := router.NewRouter(env, conn)

	srv := &http.Server{
		Addr:              env.AppAddr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       20 * time.Second,
		WriteTimeout:      20 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		log.Printf("Servidor escuchando en http://localhost%s", env.AppAddr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("No se pudo iniciar el servidor: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	log.Println("Apagando servidor...")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Apagado del servidor falló: %v", err)
	}

	log.Println("Servidor detenido correctamente.")
}
