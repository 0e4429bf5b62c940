// Package dispatch is the core of the notification engine: it turns a
// send request into per-channel lifecycle records, routes each record to
// its channel sender and runs the background loop for scheduled and
// batched work.
//
// The request-time entry point is Service:
//
//	svc := dispatch.NewService(directory, resolver, records, batches, dispatcher)
//
//	res, err := svc.Send(ctx, dispatch.SendRequest{
//		UserID:    "u-1",
//		Title:     "Claim approved",
//		Message:   "Your claim has been approved.",
//		EventType: "claim_status_changed",
//	})
//
// When the request names no channels, the user's preferences decide which
// channels receive the notification. Channels disabled by preference or
// muted by quiet hours are skipped entirely: no record is created for
// them. Each accepted channel gets its own record with an independent
// lifecycle (pending, sent, delivered, read, failed).
//
// Senders implement the per-channel transports. A sender failure or panic
// marks only its own record failed; it never aborts the surrounding send
// or batch.
//
// The background Processor polls storage for scheduled notifications and
// queued batches that became due:
//
//	proc := dispatch.NewProcessor(directory, records, batches, dispatcher, bulk,
//		dispatch.WithLocker(lease))
//	proc.Start(ctx)
//	defer proc.Stop(10 * time.Second)
//
// With a Locker configured, concurrent processor instances claim each
// unit of work before dispatching it, so scaling out does not duplicate
// deliveries.
package dispatch
