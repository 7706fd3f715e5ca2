package router

import (
	"context"

	"github.com/gofiber/fiber/v2/log"

	"github.com/ManuelReschke/opad/app/controllers"
	"github.com/ManuelReschke/opad/app/repository"
	"github.com/ManuelReschke/opad/internal/pkg/blobstore"
	"github.com/ManuelReschke/opad/internal/pkg/cache"
	"github.com/ManuelReschke/opad/internal/pkg/database"
	"github.com/ManuelReschke/opad/internal/pkg/env"
	"github.com/ManuelReschke/opad/internal/pkg/jobqueue"
	"github.com/ManuelReschke/opad/internal/pkg/mail"
	"github.com/ManuelReschke/opad/internal/pkg/monthview"
	"github.com/ManuelReschke/opad/internal/pkg/photos"
)

const thumbnailWidth = 200

// newDependencies opens the blob store, starts the job queue and builds the
// photo service. A broken blob store configuration is fatal.
func newDependencies(ctx context.Context) controllers.Dependencies {
	repos := repository.NewRepositories(database.GetDB())

	blobCfg, err := blobstore.LoadConfig()
	if err != nil {
		log.Fatalf("[Router] blob store config: %v", err)
	}
	blobs, err := blobstore.New(ctx, blobCfg)
	if err != nil {
		log.Fatalf("[Router] blob store: %v", err)
	}

	manager := jobqueue.GetManager()
	manager.GetQueue().RegisterHandler(jobqueue.JobTypePhotoThumbnail, (&jobqueue.ThumbnailProcessor{
		Records: repos.Photo,
		Blobs:   blobs,
		Width:   thumbnailWidth,
	}).Handle)
	manager.Start()

	baseURL := env.GetEnv("APP_BASE_URL", "")
	service := photos.NewService(repos.Photo, blobs, cache.NewStore(cache.GetClient(), "opad:"), manager.GetQueue(), photos.Config{
		Location:    env.Location(),
		LookupLimit: env.GetEnvInt("LOOKUP_CONCURRENCY", monthview.DefaultLookupLimit),
		BaseURL:     baseURL,
		PresignTTL:  blobCfg.PresignTTL,
	})

	return controllers.Dependencies{
		Users:       repos.User,
		Photos:      service,
		Mailer:      mail.SMTPSender{},
		ResetSecret: env.GetEnv("RESET_TOKEN_SECRET", env.GetEnv("SESSION_SECRET", "")),
		BaseURL:     baseURL,
	}
}
