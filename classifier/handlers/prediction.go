/*
 *     Copyright 2024 The Netanomaly Authors
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *      http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/netanomaly/netanomaly/classifier/service"
)

// @Summary Create Prediction
// @Description Classify a traffic sample as Normal or Anomaly
// @Tags Prediction
// @Accept json
// @Produce json
// @Param Sample body object true "inbound_rate, outbound_rate, inbound_util, outbound_util"
// @Success 200 {object} service.PredictionResult
// @Failure 400
// @Failure 503
// @Router /api/predict [post]
func (h *Handlers) CreatePrediction(ctx *gin.Context) {
	// No body is read while the model is missing.
	if err := h.service.Available(); err != nil {
		ctx.Error(err) // nolint: errcheck
		return
	}

	raw, err := ctx.GetRawData()
	if err != nil {
		ctx.Error(service.ErrJSONBodyRequired) // nolint: errcheck
		return
	}

	var payload any
	if err := json.Unmarshal(raw, &payload); err != nil || payload == nil {
		ctx.Error(service.ErrJSONBodyRequired) // nolint: errcheck
		return
	}

	body, ok := payload.(map[string]any)
	if !ok {
		ctx.Error(service.ErrInvalidInput.WithDetail("body must be a json object")) // nolint: errcheck
		return
	}

	result, err := h.service.Predict(ctx.Request.Context(), body)
	if err != nil {
		ctx.Error(err) // nolint: errcheck
		return
	}

	ctx.JSON(http.StatusOK, result)
}
