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

package middlewares

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/netanomaly/netanomaly/internal/errordefs"
	"github.com/netanomaly/netanomaly/internal/logger"
)

type ErrorResponse struct {
	Error  string `json:"error"`
	Detail string `json:"detail,omitempty"`
}

func Error() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()
		err := c.Errors.Last()
		if err == nil {
			return
		}

		if e, ok := errordefs.As(err.Err); ok {
			c.JSON(e.Code.HTTPStatus(), ErrorResponse{
				Error:  e.Message,
				Detail: e.Detail,
			})
			return
		}

		// Unknown error
		logger.Errorf("request %s %s failed: %s", c.Request.Method, c.Request.URL.Path, err.Error())
		c.JSON(http.StatusInternalServerError, ErrorResponse{
			Error: http.StatusText(http.StatusInternalServerError),
		})
	}
}
