/*
Package monitoring provides performance monitoring and metrics collection.

# Overview

This package implements Prometheus-based metrics collection for the
gateway, tracking HTTP requests, session lifecycle, automation provider
calls, and agent loop activity. Each Metrics instance owns its registry
so tests can create collectors freely.

# Usage

	// Create metrics collector
	metrics := monitoring.NewMetrics()

	// Add middleware to Gin router
	router.Use(monitoring.Middleware(metrics))

	// Record session lifecycle
	metrics.RecordSessionCreated("scrapybara-browser")
	metrics.RecordSessionDeleted()

	// Time provider operations
	timer := monitoring.NewTimer(metrics, "screenshot")
	// ... perform operation ...
	timer.Stop("success")

# Metrics Endpoint

Expose metrics via the registry-scoped handler:

	router.GET("/metrics", gin.WrapH(metrics.Handler()))
*/
package monitoring
