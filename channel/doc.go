// Package channel provides a bounded FIFO channel for communication
// between strands, managed through the handle table.
//
// A channel is created behind a handle and reached through its
// capability type:
//
//	h, _ := channel.New(table, rt, 16)
//	ptr, _ := table.Query(h, channel.Type)
//	ch := ptr.(*channel.Channel)
//
// Send and Recv suspend the calling strand through the scheduler when
// the buffer is full or empty. Inside a no-blocking fence (an object
// teardown) they fail deterministically instead of suspending.
//
// Closing the last handle tears the channel down: waiters are woken and
// observe closed_channel, as do all later operations.
package channel
