// Package gcppubsub implements the notify.Broker interface on GCP Pub/Sub.
package gcppubsub

import (
	"log"
	"os"
)

// GetGCPProjectID returns the project ID from the environment and exits the
// process when it is missing; a tripkit instance configured for Pub/Sub
// cannot run without one.
func GetGCPProjectID() string {
	projectID := os.Getenv("GCP_PROJECT_ID")
	if projectID == "" {
		log.Fatal("GCP_PROJECT_ID environment variable must be set.")
	}
	return projectID
}
