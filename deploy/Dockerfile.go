FROM golang:1.24-alpine AS builder

WORKDIR /app

# Dependencies
COPY go.mod go.sum* ./
RUN go mod download

# Source
COPY . .

# Build (SQL migrations are embedded in the binary)
RUN CGO_ENABLED=0 GOOS=linux go build -o /app/dashboard ./cmd/api

# Runtime
FROM alpine:3.19

RUN apk add --no-cache ca-certificates tzdata

WORKDIR /app

COPY --from=builder /app/dashboard .

EXPOSE 3000

CMD ["./dashboard"]
