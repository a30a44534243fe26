package model

// DerivePropagation computes the next propagation state from a lifecycle
// transition. It is the only way reconciliation touches propagation state;
// the export pipeline itself only ever advances records to SYNCED after a
// confirmed downstream call.
//
// Repeated reconciliation passes accumulate "needs propagation" state
// without re-queueing assets already confirmed synced and untouched since.
func DerivePropagation(lifecycle Lifecycle, current Propagation) Propagation {
	switch lifecycle {
	case LifecycleNew:
		return PropagationNotSynced
	case LifecycleUpdated:
		if current == PropagationSynced {
			return PropagationPendingUpdate
		}
		return current
	case LifecycleDeleted:
		if current == PropagationSynced || current == PropagationPendingUpdate {
			return PropagationPendingDelete
		}
		return current
	default:
		// ACTIVE and anything unknown leave propagation untouched.
		return current
	}
}
