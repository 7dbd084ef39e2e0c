// Package services implements the business logic layer for campi.
//
// Services sit between the connection responder / admin handlers and the
// data store or devices.
//
// # Service Dependency Graph
//
//	Responder (connection tasks)      Handlers (admin API)
//	    │          │                       │
//	    ▼          ▼                       ▼
//	Capture    AccessLog ◄─────────────────┘
//	    │          ├──► Store (requests, task_failures)
//	    ▼          └──► events.Publisher (NATS)
//	capture.Camera
//
// # Capture
//
// Capture owns the camera. The device takes one frame at a time, so Frame
// holds a mutex for the whole acquisition; concurrent connection tasks
// asking for /capture wait their turn on it.
//
// Acquisition:
//
//	┌─────────┐  ok   ┌───────┐
//	│ attempt │──────►│ frame │
//	└────┬────┘       └───────┘
//	     │ error (timeout, empty frame, device error)
//	     ▼
//	┌──────────────────────┐  tries left  ┌─────────┐
//	│ exponential backoff  │─────────────►│ attempt │
//	└──────────┬───────────┘              └─────────┘
//	           │ exhausted or ctx done
//	           ▼
//	     CaptureError
//
// Each attempt gets its own deadline (capture timeout), which bounds how
// long a worker can be held by the device.
//
// # AccessLog
//
// AccessLog stores one row per served connection and one row per contained
// task failure, and forwards both as events. Storage or publish errors are
// logged and swallowed: they must never turn into a connection failure.
//
// Usage:
//
//	accessLog := services.NewAccessLogService(st, publisher)
//	accessLog.Record(ctx, models.NewRequest(id, remote, resp))
//	result, err := accessLog.List(ctx, services.RequestListParams{Limit: 20})
//	err = accessLog.Export(ctx, w) // xlsx
package services
