package api

import (
	"net/http"

	"github.com/barscript/barscript/internal/version"
	"github.com/barscript/barscript/service/result"
)

// HTTPGetInfo returns a handler reporting the server and language versions.
func (api API) HTTPGetInfo() http.HandlerFunc {
	return api.Endpoint(api.epGetInfo)
}

func (api API) epGetInfo(req *http.Request) result.Result {
	var resp InfoModel
	resp.Version.Server = version.ServerCurrent
	resp.Version.BarScript = version.Current
	return result.OK(resp, "served API info")
}
