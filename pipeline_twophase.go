package texload

// fetchPhaseShare is the progress sub-range occupied by the fetch phase of
// the two-phase pipeline. Progress holds at this value until the decode
// completes, then reports 1.0.
const fetchPhaseShare = 0.9

// TwoPhasePipeline fetches raw encoded bytes and then decodes them through
// an explicit Codec, parameterized by the request's container fields
// (ImageIndex, FaceSlice, MipLimit, ImportMips, ColorSpace).
//
// Fetch progress is scaled into [0, 0.9]; transport failures remain
// transient exactly as in the direct pipeline. A codec open or decode
// failure is classified FailureOther and is fatal: it trips the load's
// cancellation latch so no further attempts run. A payload that fails
// to decode will not decode better on a refetch.
type TwoPhasePipeline struct {
	transport Transport
	codec     Codec
}

// NewTwoPhasePipeline creates a two-phase pipeline over the given
// transport and codec. A nil transport means a default HTTPTransport.
// A nil codec means per-payload detection across registered codecs.
func NewTwoPhasePipeline(transport Transport, codec Codec) *TwoPhasePipeline {
	if transport == nil {
		transport = NewHTTPTransport(HTTPTransportConfig{})
	}
	return &TwoPhasePipeline{transport: transport, codec: codec}
}

// Attempt implements the Pipeline interface.
func (p *TwoPhasePipeline) Attempt(ac AttemptContext) (*Pixmap, AttemptOutcome) {
	// Phase 1: fetch, progress scaled into [0, fetchPhaseShare].
	data, out := fetchPayload(ac, p.transport, func(f float64) {
		ac.Report(f * fetchPhaseShare)
	})
	if out.kind != attemptSuccess {
		return nil, out
	}

	// Phase 2: explicit decode. Progress holds at fetchPhaseShare while
	// the decode task runs.
	ac.Report(fetchPhaseShare)

	codec := p.codec
	if codec == nil {
		c, err := DetectCodec(data)
		if err != nil {
			return nil, Fatal(FailureOther, err)
		}
		codec = c
	}

	container, err := codec.Open(data)
	if err != nil {
		return nil, Fatal(FailureOther, err)
	}
	defer func() {
		_ = container.Close()
	}()

	// Checkpoint between open and decode.
	if ac.Token.Canceled() {
		return nil, Canceled()
	}

	ctx, cancel := ac.Token.bind(ac.Ctx)
	defer cancel()

	req := ac.Request
	pm, err := container.Decode(ctx, DecodeParams{
		ImageIndex: req.ImageIndex,
		FaceSlice:  req.FaceSlice,
		MipLimit:   req.MipLimit,
		ImportMips: req.ImportMips,
		ColorSpace: req.ColorSpace,
	})

	// Checkpoint: cancellation observed mid-decode yields an empty-result
	// completion, not a failure.
	if ac.Token.Canceled() || ac.Ctx.Err() != nil {
		return nil, Canceled()
	}
	if err != nil {
		return nil, Fatal(FailureOther, err)
	}
	if pm.Empty() {
		return nil, Fatal(FailureOther, ErrEmptyResponse)
	}

	ac.Report(1)
	Logger().Debug("two-phase decode complete",
		"url", req.URL, "codec", codec.Name(),
		"width", pm.Width(), "height", pm.Height())
	return pm, Success()
}
