// Package jobs provides scheduled background tasks for the fleet service.
//
// Jobs run on github.com/robfig/cron/v3 and are managed through JobManager:
//
//	jobManager := jobs.NewJobManager()
//	jobManager.Add("expiry_sweep", jobs.NewExpirySweepJob(expireHandler, "@every 5m", 100, logger))
//
//	if err := jobManager.StartAll(); err != nil {
//		log.Fatal("Failed to start jobs:", err)
//	}
//	defer jobManager.StopAll()
//
// # Available Jobs
//
// ExpirySweepJob closes PENDING assignments past their deadline with the
// system actor and reason "no response". Responses arriving after the
// deadline are already refused by the workflow, so the sweep only has to
// catch up on records nobody touched.
package jobs
