// Package realtime decodes change-feed events and delivers them over a
// websocket.
//
// Events are validated once, at the subscription boundary, into the closed set
// Insert | Update | Delete; handlers switch on the concrete type instead of
// probing payload fields. The wire protocol is a topic/event/ref/payload frame:
//
//	-> {"topic":"realtime:user_library:<uuid>","event":"phx_join","ref":"<uuid>",
//	    "payload":{"table":"user_library","filter":"user_id=eq.u1"}}
//	<- {"topic":"...","event":"phx_reply","ref":"<uuid>","payload":{"status":"ok"}}
//	<- {"topic":"...","event":"postgres_changes",
//	    "payload":{"eventType":"INSERT","new":{...},"old":{...}}}
//	-> {"topic":"...","event":"phx_leave","ref":"<uuid>"}
package realtime
