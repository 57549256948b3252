package glbackend

// Clip distances follow the section plane convention: geometry where
// dot(n, p) + d > 0 is removed.
const meshVertexShader = `#version 410 core
layout (location = 0) in vec3 aPos;
layout (location = 1) in vec3 aNormal;

uniform mat4 uModel;
uniform mat4 uView;
uniform mat4 uProj;
uniform vec4 uClip[6];

out vec3 vNormal;

void main() {
	vec4 world = uModel * vec4(aPos, 1.0);
	vNormal = mat3(uModel) * aNormal;
	for (int i = 0; i < 6; i++) {
		gl_ClipDistance[i] = -dot(uClip[i], world);
	}
	gl_Position = uProj * uView * world;
}
`

const meshFragmentShader = `#version 410 core
in vec3 vNormal;

uniform vec3 uLightDir;
uniform float uLightIntensity;
uniform vec4 uColor;

out vec4 FragColor;

void main() {
	vec3 n = normalize(vNormal);
	if (!gl_FrontFacing) {
		n = -n;
	}
	float diffuse = max(dot(n, uLightDir), 0.0) * uLightIntensity;
	FragColor = vec4(uColor.rgb * (0.25 + diffuse), uColor.a);
}
`

// Hemisphere occlusion: downward-facing surfaces receive less sky light.
const occlusionFragmentShader = `#version 410 core
in vec3 vNormal;

out vec4 FragColor;

void main() {
	vec3 n = normalize(vNormal);
	if (!gl_FrontFacing) {
		n = -n;
	}
	float occ = 0.55 + 0.45 * (n.y * 0.5 + 0.5);
	FragColor = vec4(vec3(occ), 1.0);
}
`

const lineVertexShader = `#version 410 core
layout (location = 0) in vec3 aPos;

uniform mat4 uView;
uniform mat4 uProj;

void main() {
	gl_Position = uProj * uView * vec4(aPos, 1.0);
}
`

const lineFragmentShader = `#version 410 core
uniform vec4 uColor;

out vec4 FragColor;

void main() {
	FragColor = uColor;
}
`

// Fullscreen triangle generated from gl_VertexID; no vertex buffer.
const postVertexShader = `#version 410 core
out vec2 vUV;

void main() {
	vec2 p = vec2((gl_VertexID << 1) & 2, gl_VertexID & 2);
	vUV = p;
	gl_Position = vec4(p * 2.0 - 1.0, 0.0, 1.0);
}
`

const postFragmentShader = `#version 410 core
in vec2 vUV;

uniform sampler2D uScene;
uniform sampler2D uOcclusion;
uniform bool uAntialias;
uniform bool uBloom;
uniform bool uAmbientOcclusion;
uniform vec2 uTexel;

out vec4 FragColor;

float luma(vec3 c) {
	return dot(c, vec3(0.299, 0.587, 0.114));
}

void main() {
	vec3 c = texture(uScene, vUV).rgb;

	if (uAntialias) {
		vec3 n = texture(uScene, vUV + vec2(0.0, uTexel.y)).rgb;
		vec3 s = texture(uScene, vUV - vec2(0.0, uTexel.y)).rgb;
		vec3 e = texture(uScene, vUV + vec2(uTexel.x, 0.0)).rgb;
		vec3 w = texture(uScene, vUV - vec2(uTexel.x, 0.0)).rgb;
		float edge = abs(luma(n) + luma(s) - luma(e) - luma(w));
		c = mix(c, (n + s + e + w + c) / 5.0, clamp(edge * 4.0, 0.0, 1.0));
	}

	if (uBloom) {
		vec3 glow = vec3(0.0);
		for (int x = -2; x <= 2; x++) {
			for (int y = -2; y <= 2; y++) {
				vec3 t = texture(uScene, vUV + vec2(x, y) * uTexel * 2.0).rgb;
				glow += max(t - vec3(0.8), vec3(0.0));
			}
		}
		c += glow / 25.0;
	}

	if (uAmbientOcclusion) {
		c *= texture(uOcclusion, vUV).r;
	}

	FragColor = vec4(c, 1.0);
}
`
