// Copyright (c) AgentFlow Authors.
// Licensed under the MIT License.

/*
Package image is the boundary to remote text-to-image APIs.

# Overview

Provider hides the differences between services behind one request and
response model. Every implementation returns at least one ImageData whose
Payload is a data URI, or a structured error: PROVIDER_ERROR for a non-2xx
or payload-less response, TRANSPORT_ERROR for a network failure. Both are
retryable.

# Providers

  - OpenRouterProvider: chat-completions with image modalities. The image is
    read from choices[0].message.images[].image_url.url and must be a
    data:image URL.
  - GeminiProvider: native generateContent with IMAGE response modality,
    inline base64 parts.
  - OpenAIProvider: images/generations with b64_json output.

NewProvider builds one from config.APIConfig.
*/
package image
