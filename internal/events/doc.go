// Quill - Blog Content Recommendation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/quill

/*
Package events carries interaction events from the write path to the
recommendation engine's online learner.

Recording an interaction publishes an InteractionRecorded message on an
in-process watermill gochannel. A router subscribed to the topic decodes each
message and asks the learner to refresh the member's vector.

# Delivery

Handler outcomes map to acknowledgement as follows:

  - Malformed or invalid payloads are acknowledged and counted. Redelivering
    them cannot succeed.
  - Learner errors are retried with exponential backoff. When the retries are
    exhausted the message is copied to the poison topic and acknowledged.
  - Panics are recovered and treated like learner errors.

The gochannel transport keeps no state across restarts. Vectors that miss an
update are corrected the next time the member interacts, since the learner
recomputes from the full interaction history.
*/
package events
