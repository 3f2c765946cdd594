/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package db

import (
	"context"
	"log"
	"sync"
	"sync/atomic"
	"time"
)

const (
	defaultCleanupInterval  = time.Hour
	defaultCleanupRetention = 7 * 24 * time.Hour
	cleanupTimeout          = 5 * time.Minute
)

// CleanupConfig controls how often and how far back the access log is pruned.
type CleanupConfig struct {
	Interval  time.Duration
	Retention time.Duration
}

// CleanupService periodically deletes expired access records.
type CleanupService struct {
	service Service
	config  CleanupConfig
	stopCh  chan struct{}
	done    chan struct{}
	once    sync.Once
	started atomic.Bool
}

// NewCleanupService creates a new access log cleanup service.
func NewCleanupService(service Service, config CleanupConfig) *CleanupService {
	if config.Interval == 0 {
		config.Interval = defaultCleanupInterval
	}

	if config.Retention == 0 {
		config.Retention = defaultCleanupRetention
	}

	return &CleanupService{
		service: service,
		config:  config,
		stopCh:  make(chan struct{}),
		done:    make(chan struct{}),
	}
}

// Start starts the cleanup service.
func (s *CleanupService) Start() {
	if s.started.CompareAndSwap(false, true) {
		go s.run()
	}
}

// Stop stops the cleanup service and waits for the loop to exit.
func (s *CleanupService) Stop() {
	s.once.Do(func() { close(s.stopCh) })

	if s.started.Load() {
		<-s.done
	}
}

// run executes the cleanup loop.
func (s *CleanupService) run() {
	defer close(s.done)

	ticker := time.NewTicker(s.config.Interval)
	defer ticker.Stop()

	// Run cleanup immediately on start
	s.cleanup()

	for {
		select {
		case <-s.stopCh:
			log.Println("Access log cleanup service stopped")
			return
		case <-ticker.C:
			s.cleanup()
		}
	}
}

func (s *CleanupService) cleanup() {
	ctx, cancel := context.WithTimeout(context.Background(), cleanupTimeout)
	defer cancel()

	deleted, err := s.service.CleanOldData(ctx, s.config.Retention)
	if err != nil {
		log.Printf("Error cleaning access log: %v", err)
		return
	}

	if deleted > 0 {
		log.Printf("Deleted %d access records older than %v", deleted, s.config.Retention)
	}
}
