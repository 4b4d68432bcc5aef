package domain

// CancelledLabel is shown instead of a step when an order was cancelled.
const CancelledLabel = "Order Cancelled"

// StepProgress describes one step of the tracking view.
type StepProgress struct {
	Step      int
	Label     string
	Completed bool
}

// Progress is the tracking view derived from an order status.
// CurrentStep is 1..5 along the forward path and 0 for cancelled orders.
type Progress struct {
	Steps       map[Status]StepProgress
	CurrentStep int
	Cancelled   bool
}

var forwardPath = []Status{
	StatusPlaced,
	StatusConfirmed,
	StatusPacked,
	StatusShipped,
	StatusDelivered,
}

var stepLabels = map[Status]string{
	StatusPlaced:    "Order Placed",
	StatusConfirmed: "Order Confirmed",
	StatusPacked:    "Order Packed",
	StatusShipped:   "Out for Delivery",
	StatusDelivered: "Delivered",
}

// ForwardPath returns the happy-path statuses in order.
func ForwardPath() []Status {
	return append([]Status(nil), forwardPath...)
}

// StatusProgress builds the tracking view for status. It is recomputed on every call.
func StatusProgress(status Status) Progress {
	current := status.rank()
	cancelled := status == StatusCancelled
	steps := make(map[Status]StepProgress, len(forwardPath))
	for i, s := range forwardPath {
		step := i + 1
		steps[s] = StepProgress{
			Step:      step,
			Label:     stepLabels[s],
			Completed: s == StatusPlaced || (!cancelled && step <= current),
		}
	}
	progress := Progress{Steps: steps, CurrentStep: current, Cancelled: cancelled}
	if cancelled {
		progress.CurrentStep = 0
	}
	return progress
}

// Label returns the display label for a forward-path status.
func (s Status) Label() string {
	if s == StatusCancelled {
		return CancelledLabel
	}
	return stepLabels[s]
}

// rank is the 1-based position on the forward path. Unknown statuses rank as placed.
func (s Status) rank() int {
	for i, candidate := range forwardPath {
		if candidate == s {
			return i + 1
		}
	}
	if s == StatusCancelled {
		return 0
	}
	return 1
}
