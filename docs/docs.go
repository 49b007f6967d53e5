// Package classification appvote portal.
//
// Documentation for the app contest portal API.
//
//     Schemes: http
//     BasePath: /
//     Version: 0.1.0
//     Host: localhost:8000
//
//     Consumes:
//     - application/json
//
//     Produces:
//     - application/json
//
//     Security:
//     - api_key
//
//     SecurityDefinitions:
//     api_key:
//       type: apiKey
//       name: Authorization
//       in: header
//
// swagger:meta
package docs
