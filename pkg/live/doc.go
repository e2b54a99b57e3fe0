// Package live streams rendered frames to browsers over WebSocket.
//
// A Hub is a view.Target: mount it as the store's root target and every
// render is broadcast to the connected clients as a JSON message:
//
//	{"type":"mount","frame":{"seq":1,"html":"..."}}
//	{"type":"update","frame":{"seq":2,"html":"...","patches":[...]}}
//	{"type":"unmount"}
//
// A client that connects after the mount receives the latest frame as a
// mount message. Clients that fall behind or stop answering pings are
// dropped.
//
// Routes serves a page shell with a small inline client and the WebSocket
// endpoint:
//
//	hub := live.NewHub(nil)
//	st.ResetData(ctx, data, App, hub)
//	http.ListenAndServe(":8080", live.Routes(hub, "My App"))
package live
