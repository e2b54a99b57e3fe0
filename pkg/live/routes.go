package live

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/vango-dev/appstore/pkg/render"
	"github.com/vango-dev/appstore/pkg/vdom"
)

// clientScript keeps #app in sync with the hub.
const clientScript = `(function(){
var app=document.getElementById("app");
function connect(){
var ws=new WebSocket((location.protocol==="https:"?"wss://":"ws://")+location.host+location.pathname.replace(/\/$/,"")+"/ws");
ws.onmessage=function(ev){
var m=JSON.parse(ev.data);
if(m.type==="unmount"){app.innerHTML="";return;}
if(m.frame){app.innerHTML=m.frame.html;}
};
ws.onclose=function(){setTimeout(connect,1000);};
}
connect();
})();`

// Routes returns a router serving the page shell at / and the hub's
// WebSocket at /ws.
func Routes(hub *Hub, title string) chi.Router {
	renderer := render.NewRenderer(render.RendererConfig{})

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		var body *vdom.VNode
		if f, ok := hub.Last(); ok {
			body = vdom.Raw(f.HTML)
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		err := renderer.RenderPage(w, render.PageData{
			Title:   title,
			Body:    body,
			Scripts: []string{clientScript},
		})
		if err != nil {
			hub.logger.Error("render page", "error", err)
		}
	})
	r.Get("/ws", hub.ServeHTTP)
	return r
}
