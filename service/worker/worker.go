package worker

import (
	"log"

	"github.com/hibiken/asynq"

	"mail_trans_engine/pkg/app"
	"mail_trans_engine/pkg/tasks"
)

// Run starts the queue worker plus the scheduler for the periodic sweep
// and poll tasks. Blocks until the server stops.
func Run(a *app.App) {
	redisOpt := asynq.RedisClientOpt{
		Addr:     a.Cfg.Redis.Addr(),
		Password: a.Cfg.Redis.Password,
	}

	handler := tasks.NewHandler(a.Translator, a.Units, a.Batch,
		a.Cfg.Translate.ClaimTimeout(), a.Log)

	srv := asynq.NewServer(redisOpt, asynq.Config{
		Concurrency: 10,
		Queues: map[string]int{
			"critical": 6,
			"default":  3,
			"low":      1,
		},
	})

	mux := asynq.NewServeMux()
	mux.HandleFunc(tasks.TypeTranslateUnit, handler.HandleTranslateUnit)
	mux.HandleFunc(tasks.TypeUnitsSweep, handler.HandleUnitsSweep)
	mux.HandleFunc(tasks.TypeBatchPoll, handler.HandleBatchPoll)

	scheduler := asynq.NewScheduler(redisOpt, nil)
	if _, err := scheduler.Register("@every 1m", asynq.NewTask(tasks.TypeUnitsSweep, nil)); err != nil {
		log.Fatalf("could not register sweep task: %v", err)
	}
	if _, err := scheduler.Register("@every 1m", asynq.NewTask(tasks.TypeBatchPoll, nil)); err != nil {
		log.Fatalf("could not register batch poll task: %v", err)
	}

	go func() {
		if err := scheduler.Run(); err != nil {
			log.Fatalf("could not run scheduler: %v", err)
		}
	}()

	if err := srv.Run(mux); err != nil {
		log.Fatalf("could not run server: %v", err)
	}
}
