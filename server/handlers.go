package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/paulmach/orb"
	"github.com/valyala/fasthttp"

	"github.com/vegepoly/vegepoly/polyparse"
	"github.com/vegepoly/vegepoly/rowindex"
	"github.com/vegepoly/vegepoly/veggen"
	"github.com/vegepoly/vegepoly/vegmodel"
)

type paramOverrides struct {
	VegetationType int      `json:"vegetation_type"`
	Density        *float64 `json:"density,omitempty"`
	Variation      *float64 `json:"variation,omitempty"`
	TypeValue      *int     `json:"type_value,omitempty"`
}

// resolve merges the request overrides over the stored profile for the
// vegetation type.
func (s *server) resolve(o paramOverrides) (vegmodel.Params, error) {
	params, err := s.store.EffectiveParams(o.VegetationType)
	if err != nil {
		return vegmodel.Params{}, err
	}
	if o.Density != nil {
		params.Density = *o.Density
	}
	if o.Variation != nil {
		params.Variation = *o.Variation
	}
	if o.TypeValue != nil {
		params.TypeValue = *o.TypeValue
	}
	return params, nil
}

type generateRequest struct {
	CSVPath string `json:"csv_path"`
	Output  string `json:"output,omitempty"`
	paramOverrides
}

func (s *server) StartJobHandler(ctx *fasthttp.RequestCtx) {
	var req generateRequest
	if err := json.Unmarshal(ctx.Request.Body(), &req); err != nil {
		ctx.Response.SetStatusCode(http.StatusBadRequest)
		ctx.Response.SetBodyString("failed to parse request: " + err.Error())
		return
	}

	params, err := s.resolve(req.paramOverrides)
	if err != nil {
		ctx.Response.SetStatusCode(http.StatusInternalServerError)
		ctx.Response.SetBodyString(err.Error())
		return
	}

	j, err := s.startJob(req.CSVPath, params, req.Output)
	if err != nil {
		ctx.Response.SetStatusCode(http.StatusBadRequest)
		ctx.Response.SetBodyString(err.Error())
		return
	}

	writeJSON(ctx, http.StatusAccepted, j.status())
}

func (s *server) JobProgressHandler(ctx *fasthttp.RequestCtx) {
	id := ctx.UserValue("id").(string)

	j, ok := s.jobs.Load(id)
	if !ok {
		ctx.Response.SetStatusCode(http.StatusNotFound)
		return
	}

	writeJSON(ctx, http.StatusOK, j.status())
}

type previewRequest struct {
	WKT string `json:"wkt"`
	paramOverrides
}

type previewResponse struct {
	Polygon []orb.Point           `json:"polygon"`
	Points  []vegmodel.PointRecord `json:"points"`
}

func (s *server) PreviewHandler(ctx *fasthttp.RequestCtx) {
	s.metricPreviewCalls.Add(ctx, 1)

	var req previewRequest
	if err := json.Unmarshal(ctx.Request.Body(), &req); err != nil {
		ctx.Response.SetStatusCode(http.StatusBadRequest)
		ctx.Response.SetBodyString("failed to parse request: " + err.Error())
		return
	}

	poly, err := polyparse.ParsePolygon(req.WKT)
	if err != nil {
		ctx.Response.SetStatusCode(http.StatusBadRequest)
		ctx.Response.SetBodyString(err.Error())
		return
	}

	params, err := s.resolve(req.paramOverrides)
	if err != nil {
		ctx.Response.SetStatusCode(http.StatusInternalServerError)
		ctx.Response.SetBodyString(err.Error())
		return
	}

	gen, err := veggen.New(params)
	if err != nil {
		ctx.Response.SetStatusCode(http.StatusBadRequest)
		ctx.Response.SetBodyString(err.Error())
		return
	}

	ring, points, err := gen.Preview(poly)
	if err != nil {
		ctx.Response.SetStatusCode(http.StatusUnprocessableEntity)
		ctx.Response.SetBodyString(err.Error())
		return
	}

	writeJSON(ctx, http.StatusOK, previewResponse{Polygon: ring, Points: points})
}

type locateRequest struct {
	CSVPath string  `json:"csv_path"`
	X       float64 `json:"x"`
	Y       float64 `json:"y"`
}

type locateResponse struct {
	Found bool `json:"found"`
	Line  int  `json:"line,omitempty"`
}

func (s *server) LocateHandler(ctx *fasthttp.RequestCtx) {
	var req locateRequest
	if err := json.Unmarshal(ctx.Request.Body(), &req); err != nil {
		ctx.Response.SetStatusCode(http.StatusBadRequest)
		ctx.Response.SetBodyString("failed to parse request: " + err.Error())
		return
	}

	idx, ok := s.indexes.Load(req.CSVPath)
	if !ok {
		rows, err := polyparse.ReadRows(req.CSVPath)
		if err != nil {
			ctx.Response.SetStatusCode(http.StatusBadRequest)
			ctx.Response.SetBodyString(err.Error())
			return
		}
		idx, _ = s.indexes.LoadOrStore(req.CSVPath, rowindex.FromRows(rows))
	}

	entry, found := idx.Locate(orb.Point{req.X, req.Y})
	resp := locateResponse{Found: found}
	if found {
		resp.Line = entry.Row.Line
	}
	writeJSON(ctx, http.StatusOK, resp)
}

func (s *server) ParamsHandler(ctx *fasthttp.RequestCtx) {
	typeS := ctx.UserValue("type").(string)
	vegetationType, err := strconv.Atoi(typeS)
	if err != nil {
		ctx.Response.SetStatusCode(http.StatusBadRequest)
		return
	}

	params, err := s.store.EffectiveParams(vegetationType)
	if err != nil {
		ctx.Response.SetStatusCode(http.StatusInternalServerError)
		return
	}

	writeJSON(ctx, http.StatusOK, params)
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	out, err := json.Marshal(v)
	if err != nil {
		ctx.Response.SetStatusCode(http.StatusInternalServerError)
		ctx.Response.SetBodyString("failed to marshal response")
		return
	}
	ctx.Response.Header.SetContentType("application/json")
	ctx.Response.SetStatusCode(status)
	ctx.Response.SetBody(out)
}
