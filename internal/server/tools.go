package server

// Tool represents an MCP tool definition
type Tool struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	InputSchema map[string]interface{} `json:"inputSchema"`
}

func prop(typ, description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        typ,
		"description": description,
	}
}

func withDefault(p map[string]interface{}, v interface{}) map[string]interface{} {
	p["default"] = v
	return p
}

// pointList is the schema of a list of [x, y] pairs.
func pointList(description string) map[string]interface{} {
	return map[string]interface{}{
		"type":        "array",
		"description": description,
		"items": map[string]interface{}{
			"type":     "array",
			"items":    map[string]interface{}{"type": "number"},
			"minItems": 2,
			"maxItems": 2,
		},
	}
}

// GetToolDefinitions returns all available tools
func GetToolDefinitions() []Tool {
	return []Tool{
		{
			Name: "detect_documents",
			Description: "Find candidate page boundaries in a photo. Returns quadrilaterals (four [x, y] corners in " +
				"original image pixels, largest first) with nested and duplicate outlines removed.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":              prop("string", "Absolute path to the image file"),
					"image":             prop("string", "Image as a base64 data URL, used when path is not given"),
					"preset":            withDefault(map[string]interface{}{"type": "string", "enum": []string{"classic", "aggressive"}, "description": "Starting parameter set"}, "classic"),
					"threshold1":        withDefault(prop("number", "Low Canny threshold"), 75),
					"threshold2":        withDefault(prop("number", "High Canny threshold"), 200),
					"morph_strategy":    map[string]interface{}{"type": "string", "enum": []string{"close", "dilate"}, "description": "How broken edges are joined"},
					"morph_kernel":      withDefault(prop("integer", "Structuring element size; even values are bumped to odd"), 5),
					"dilate_iterations": withDefault(prop("integer", "Dilation passes for the dilate strategy"), 3),
					"resize_width":      withDefault(prop("integer", "Working resolution along scale_axis"), 600),
					"scale_axis":        map[string]interface{}{"type": "string", "enum": []string{"width", "height"}, "description": "Axis normalized to resize_width"},
					"min_area_frac":     prop("number", "Smallest candidate area as a fraction of the image"),
					"max_area_frac":     prop("number", "Largest candidate area as a fraction of the image"),
					"epsilon":           prop("number", "Polygon approximation tolerance relative to the contour perimeter"),
					"filter_dist":       withDefault(prop("number", "Minimum distance in pixels between candidate centroids"), 20),
					"containment":       map[string]interface{}{"type": "string", "enum": []string{"polygon", "bbox"}, "description": "Nested-candidate test"},
					"backend":           prop("string", "Contour extractor: native, or opencv when available"),
					"include_edges":     withDefault(prop("boolean", "Return the edge map as edge_image"), true),
					"include_overlay":   withDefault(prop("boolean", "Return the working image with candidates drawn as overlay_image"), false),
				},
			},
		},
		{
			Name: "warp_document",
			Description: "Flatten a chosen quadrilateral into an upright rectangular image. The four corners may be in " +
				"any order. Optionally estimates page tilt (pitch/yaw/roll in degrees) and reads the page text.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"path":         prop("string", "Absolute path to the image file"),
					"image":        prop("string", "Image as a base64 data URL, used when path is not given"),
					"points":       pointList("Exactly four corners"),
					"corner_order": map[string]interface{}{"type": "string", "enum": []string{"sumdiff", "xsort"}, "description": "Corner ordering rule", "default": "sumdiff"},
					"inset":        withDefault(prop("number", "Shrink the quadrilateral by this many pixels first"), 0),
					"pose":         withDefault(prop("boolean", "Estimate the page orientation"), true),
					"ocr":          withDefault(prop("boolean", "Run OCR on the rectified page"), false),
					"language":     prop("string", "Tesseract language code for OCR (e.g. eng)"),
					"output":       prop("string", "Write the rectified page to this path instead of returning it inline"),
				},
				"required": []string{"points"},
			},
		},
		{
			Name:        "select_candidate",
			Description: "Pick the smallest detected candidate that contains a point, e.g. where the user clicked.",
			InputSchema: map[string]interface{}{
				"type": "object",
				"properties": map[string]interface{}{
					"candidates": map[string]interface{}{
						"type":        "array",
						"description": "Candidates as returned by detect_documents",
						"items":       pointList("Four corners"),
					},
					"point": map[string]interface{}{
						"type":        "array",
						"description": "The [x, y] point to test",
						"items":       map[string]interface{}{"type": "number"},
					},
				},
				"required": []string{"candidates", "point"},
			},
		},
	}
}
