/*
# mamgo services package

The services package wraps the mam channel core with the pieces a running
node needs: a subscription registry, a polling listener and an HTTP gateway.

## Components

1. **SubscriptionRegistry** (`registry.go`)
   - Tracks active subscriptions keyed by their subscribe-time root
   - Buffers messages delivered by the listener until a consumer drains them
   - Deactivation stops future polls; in-flight polls finish on their own

2. **Listener** (`listener.go`)
   - Runs one poll loop per subscription at the subscription's interval
   - Serializes polls: a cycle whose predecessor is still in flight is
     skipped and counted, never run concurrently
   - Advances the subscription's chain head after each successful traversal
     and sweeps the fragment cache between polls

3. **Gateway** (`gateway.go`)
   - chi route registrar exposing the channel operations over HTTP
   - Endpoints:
   - `POST /v1/channels` - Create a channel session
   - `POST /v1/channels/{channel_id}/messages` - Mask and attach a message
   - `GET /v1/messages/{root}` - Drain a message chain
   - `POST /v1/subscriptions` - Subscribe and start polling
   - `GET /v1/subscriptions/{root}/messages` - Drain buffered messages
   - `DELETE /v1/subscriptions/{root}` - Deactivate a subscription

The gateway owns the channel sessions; publisher state never leaves the
process.
*/
package services
